/*
 * minnow - a user-space TCP/IP stack core
 * Copyright (c) 2026 The Minnow Authors
 *
 * Use of this source code is governed by the MIT license found in the
 * LICENSE file at the root of this repository.
 */

// Command minnow-router wires a Router across the interfaces described by
// a YAML config file and drives its tick loop, printing a stats table on
// exit.
package main

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/evilsocket/islazy/tui"
	"github.com/fatih/color"
	flag "github.com/namsral/flag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/minnow-stack/minnow/internal/config"
	"github.com/minnow-stack/minnow/internal/logging"
	"github.com/minnow-stack/minnow/internal/metrics"
	"github.com/minnow-stack/minnow/netif"
	"github.com/minnow-stack/minnow/router"
	"github.com/minnow-stack/minnow/wire"
)

var (
	configPath = flag.String("config", "minnow.yaml", "path to a stack config file")
	runFor     = flag.Duration("run-for", 5*time.Second, "how long to drive the tick loop before exiting")
)

// sessionID tags one invocation's start-up log line and exit message, the
// way a netcap capture run tags its audit records.
var sessionID = xid.New().String()

func main() {
	flag.Parse()

	log, err := logging.New("info")
	if err != nil {
		color.Red("failed to build logger: %v", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("minnow-router starting", zap.String("session", sessionID))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	interfaces := make([]*netif.Interface, len(cfg.Interfaces))
	byName := make(map[string]int, len(cfg.Interfaces))

	for i, ic := range cfg.Interfaces {
		mac, err := parseMAC(ic.MAC)
		if err != nil {
			log.Fatal("bad interface mac", zap.String("interface", ic.Name), zap.Error(err))
		}

		ip, err := parseIP(ic.IP)
		if err != nil {
			log.Fatal("bad interface ip", zap.String("interface", ic.Name), zap.Error(err))
		}

		port := &loggingPort{name: ic.Name, log: logging.Named(log, ic.Name)}
		interfaces[i] = netif.New(ic.Name, mac, ip, port, logging.Named(log, ic.Name))
		byName[ic.Name] = i
	}

	r := router.New(interfaces, logging.Named(log, "router"))

	for _, rc := range cfg.Routes {
		prefix, err := parseIP(rc.Prefix)
		if err != nil {
			log.Fatal("bad route prefix", zap.String("prefix", rc.Prefix), zap.Error(err))
		}

		var nextHop *wire.IPAddr
		if rc.NextHop != "" {
			h, err := parseIP(rc.NextHop)
			if err != nil {
				log.Fatal("bad route next-hop", zap.String("next_hop", rc.NextHop), zap.Error(err))
			}

			nextHop = &h
		}

		idx, ok := byName[rc.Interface]
		if !ok {
			log.Fatal("route refers to unknown interface", zap.String("interface", rc.Interface))
		}

		r.AddRoute(prefix, rc.PrefixLength, nextHop, idx)
	}

	deadline := time.Now().Add(*runFor)
	tick := time.Duration(cfg.TickIntervalMs) * time.Millisecond

	for time.Now().Before(deadline) {
		r.Route()

		for _, iface := range interfaces {
			iface.Tick(cfg.TickIntervalMs)
		}

		time.Sleep(tick)
	}

	printStats(interfaces)
}

func printStats(interfaces []*netif.Interface) {
	rows := make([][]string, 0, len(interfaces))
	for _, iface := range interfaces {
		rows = append(rows, []string{
			iface.Name(),
			iface.IP().String(),
			strconv.FormatBool(iface.HasReceived()),
		})
	}

	tui.Table(os.Stdout, []string{"Interface", "IP", "Pending Received"}, rows)
	color.Green("minnow-router session %s finished", sessionID)
}

// loggingPort is the demo OutputPort: it logs every transmitted frame
// instead of touching a real device, so the binary runs without root
// privileges.
type loggingPort struct {
	name string
	log  *zap.Logger
}

func (p *loggingPort) Transmit(frame wire.EthernetFrame) {
	p.log.Debug("transmit",
		zap.String("interface", p.name),
		zap.Stringer("dst", frame.Dst),
		zap.String("bytes", humanize.Bytes(uint64(len(frame.Payload)))),
	)
}

func parseMAC(s string) (wire.MACAddr, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return wire.MACAddr{}, err
	}

	var mac wire.MACAddr
	copy(mac[:], hw)

	return mac, nil
}

func parseIP(s string) (wire.IPAddr, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return 0, errInvalidIP(s)
	}

	v4 := ip.To4()
	if v4 == nil {
		return 0, errInvalidIP(s)
	}

	return wire.IPAddr(uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])), nil
}

type errInvalidIP string

func (e errInvalidIP) Error() string {
	return "invalid ipv4 address: " + string(e)
}
