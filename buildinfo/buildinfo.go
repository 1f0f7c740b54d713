// Package buildinfo exposes the build information of the running binary as a metric.
package buildinfo

import (
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
)

const undefined = "undefined"

// Info is the build information of the running binary.
type Info struct {
	GoVersion string
	Revision  string
	Modified  bool
}

// Read returns the build information embedded in the binary.
// Fields that are not available are set to "undefined".
func Read() Info {
	info := Info{GoVersion: undefined, Revision: undefined}

	goBuildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = goBuildInfo.GoVersion
	for _, setting := range goBuildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}

// MustRegisterMetrics will register all metrics on the given registry.
func MustRegisterMetrics(registry prometheus.Registerer) {
	registry.MustRegister(buildInfo)
}

// Sample creates a sample of the remodel_build_info metric.
// Since it is a gauge it needs to be set only once on startup.
func Sample(info Info) {
	labels := prometheus.Labels{
		"goversion": info.GoVersion,
		"revision":  info.Revision,
	}
	buildInfo.With(labels).Set(1.0)
}

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "remodel_build_info",
			Help: "Build information of the remodel binary",
		},
		[]string{"revision", "goversion"},
	)
)
