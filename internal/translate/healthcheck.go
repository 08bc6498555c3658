package translate

import (
	"strconv"

	"github.com/stackgen-cli/batectify/internal/models"
	"gopkg.in/yaml.v3"
)

// healthcheckKeys are the only settings batect can override. The test
// command is not among them: batect always runs the check declared by the
// image.
var healthcheckKeys = []string{"interval", "retries", "start_period"}

func normalizeHealthCheck(node *yaml.Node, service string, diags *models.Diagnostics) (*models.HealthCheck, error) {
	if shapeOf(node) != shapeMapping {
		return nil, expected(service, "healthcheck", node, "a mapping")
	}

	warnOnUnsupportedKeys(diags, "service "+service+" healthcheck", "services."+service+".healthcheck",
		healthcheckKeys, keysOf(node))

	hc := &models.HealthCheck{}
	var err error

	if interval := lookup(node, "interval"); isSet(interval) {
		if hc.Interval, err = scalarString(service, "healthcheck.interval", interval); err != nil {
			return nil, err
		}
	}

	if retries := lookup(node, "retries"); isSet(retries) {
		s, err := scalarString(service, "healthcheck.retries", retries)
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 0 {
			diags.UnsupportedValue(models.ScopeService, service, "healthcheck.retries", s,
				"Health check retries must be a non-negative whole number.")
		} else {
			hc.Retries = n
		}
	}

	if startPeriod := lookup(node, "start_period"); isSet(startPeriod) {
		if hc.StartPeriod, err = scalarString(service, "healthcheck.start_period", startPeriod); err != nil {
			return nil, err
		}
	}

	return hc, nil
}
