// Package translate converts a Docker Compose document into a batect
// configuration.
//
// Translation is best effort. Anything batect cannot express is dropped and
// recorded in the returned Diagnostics; only structurally invalid input
// (see ParseError) stops a translation. The package performs no I/O and
// keeps no state between calls, so documents can be translated
// concurrently as long as each call gets its own collector.
package translate

import (
	"github.com/stackgen-cli/batectify/internal/models"
)

// rootKeys are the top-level compose keys the translator understands
var rootKeys = []string{"version", "services"}

// Translate converts a compose document into a batect configuration.
// The returned Diagnostics is never nil, even when err is set.
func Translate(src *models.ComposeFile) (*models.BatectConfig, *models.Diagnostics, error) {
	diags := models.NewDiagnostics()
	cfg, err := TranslateInto(src, diags)
	return cfg, diags, err
}

// TranslateInto is Translate with a caller-supplied collector
func TranslateInto(src *models.ComposeFile, diags *models.Diagnostics) (*models.BatectConfig, error) {
	warnOnUnsupportedKeys(diags, "root", "root", rootKeys, src.Keys)

	cfg := models.NewBatectConfig()
	for i := range src.Services {
		svc := &src.Services[i]
		container, err := MapService(svc, diags)
		if err != nil {
			return nil, err
		}
		// Empty containers are kept so every service has a container
		cfg.Containers.Set(svc.Name, container)
	}

	return cfg, nil
}

// warnOnUnsupportedKeys records one diagnostic per provided key that is not
// in supported, in the order the keys were provided
func warnOnUnsupportedKeys(diags *models.Diagnostics, label, path string, supported, provided []string) {
	for _, key := range provided {
		if !contains(supported, key) {
			diags.UnsupportedKey(label, path, key)
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
