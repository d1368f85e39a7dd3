package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

func newVersionsCollector(appName, appVersion string) prometheus.Collector {
	return &versionCollector{prometheus.MustNewConstMetric(prometheus.NewDesc(
		"icid_versions",
		"Build information about the running icid binary.",
		nil, prometheus.Labels{
			"app_name":    appName,
			"app_version": appVersion,
		},
	), prometheus.GaugeValue, 1)}
}

type versionCollector struct {
	ver prometheus.Metric
}

func (v *versionCollector) Describe(descs chan<- *prometheus.Desc) {
	descs <- v.ver.Desc()
}

func (v *versionCollector) Collect(metrics chan<- prometheus.Metric) {
	metrics <- v.ver
}
