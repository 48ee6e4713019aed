// Package exporter publishes the UDP tables as Prometheus metrics.
package exporter

import (
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "udpstat"

// Collector reads the UDP tables on every scrape.
type Collector struct {
	provider  *nsi.Provider
	endpoints bool

	// one scrape at a time, so parallel scrapers do not multiply the /proc and netstat load
	mu sync.Mutex

	inDatagrams  *prometheus.Desc
	outDatagrams *prometheus.Desc
	noPorts      *prometheus.Desc
	inErrors     *prometheus.Desc
	numAddrs     *prometheus.Desc
	endpointInfo *prometheus.Desc

	scrapeErrors   prometheus.Counter
	scrapeDuration prometheus.Gauge
}

// NewCollector collects from p. With endpoints set it also exports one
// info series per bound endpoint, labelled with its owning PID.
func NewCollector(p *nsi.Provider, endpoints bool) *Collector {
	family := []string{"family"}
	return &Collector{
		provider:  p,
		endpoints: endpoints,
		inDatagrams: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "datagrams_received_total"),
			"UDP datagrams delivered to sockets.", family, nil),
		outDatagrams: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "datagrams_sent_total"),
			"UDP datagrams sent.", family, nil),
		noPorts: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "no_ports_total"),
			"UDP datagrams received for a port nobody listens on.", family, nil),
		inErrors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "receive_errors_total"),
			"UDP datagrams dropped on receive for reasons other than no port.", family, nil),
		numAddrs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "endpoints"),
			"Bound UDP endpoints.", family, nil),
		endpointInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "endpoint", "info"),
			"A bound UDP endpoint; the value is always 1.",
			[]string{"family", "address", "port", "pid"}, nil),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_errors_total",
			Help:      "Scrapes that failed to read the UDP tables.",
		}),
		scrapeDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Time in seconds the last scrape took to read the UDP tables.",
		}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inDatagrams
	ch <- c.outDatagrams
	ch <- c.noPorts
	ch <- c.inErrors
	ch <- c.numAddrs
	if c.endpoints {
		ch <- c.endpointInfo
	}
	c.scrapeErrors.Describe(ch)
	c.scrapeDuration.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	snap, err := pipeline.Analyze(c.provider, pipeline.AnalyzeConfig{Owners: c.endpoints, Stats: true})
	c.scrapeDuration.Set(time.Since(start).Seconds())
	if err != nil {
		log.Error("scrape failed", "err", err)
		c.scrapeErrors.Inc()
	} else {
		for _, f := range pipeline.Families() {
			s, ok := snap.Stats[f]
			if !ok {
				continue
			}
			label := f.String()
			ch <- prometheus.MustNewConstMetric(c.inDatagrams, prometheus.CounterValue, float64(s.InDatagrams), label)
			ch <- prometheus.MustNewConstMetric(c.outDatagrams, prometheus.CounterValue, float64(s.OutDatagrams), label)
			ch <- prometheus.MustNewConstMetric(c.noPorts, prometheus.CounterValue, float64(s.NoPorts), label)
			ch <- prometheus.MustNewConstMetric(c.inErrors, prometheus.CounterValue, float64(s.InErrors), label)
			ch <- prometheus.MustNewConstMetric(c.numAddrs, prometheus.GaugeValue, float64(s.NumAddrs), label)
		}
		if c.endpoints {
			seen := make(map[[4]string]bool, len(snap.Endpoints))
			for _, e := range snap.Endpoints {
				labels := [4]string{e.Family.String(), e.Addr.String(), strconv.Itoa(int(e.Port)), strconv.FormatUint(uint64(e.PID), 10)}
				// SO_REUSEPORT sockets repeat the same labels
				if seen[labels] {
					continue
				}
				seen[labels] = true
				ch <- prometheus.MustNewConstMetric(c.endpointInfo, prometheus.GaugeValue, 1, labels[:]...)
			}
		}
	}
	ch <- c.scrapeErrors
	ch <- c.scrapeDuration
}
