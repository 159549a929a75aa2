package logparse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/maxvaer/webenum/internal/target"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for log files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported file format, provide a JSON or YAML file")

// webServices are the service tags that produce targets. Matching is exact.
var webServices = map[string]struct{}{
	"http":  {},
	"https": {},
}

func formatOf(path string) string {
	switch {
	case strings.HasSuffix(path, ".json"):
		return "json"
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return "yaml"
	default:
		return ""
	}
}

// Load reads a JSON or YAML scan log and returns every host/port pair whose
// service is http or https, in document order.
//
// Entries with a missing ip or port are kept as degenerate targets (empty IP,
// port 0) and logged; entries that are not mappings are skipped.
func Load(path string) ([]target.Target, error) {
	format := formatOf(path)
	if format == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}

	doc, err := decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s log file %s: %w", format, path, err)
	}

	return extract(doc)
}

func decode(format string, data []byte) (any, error) {
	var doc any
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return nil, fmt.Errorf("extra data after JSON document at offset %d", dec.InputOffset())
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func extract(doc any) ([]target.Target, error) {
	if doc == nil {
		return nil, nil
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("log document must be a mapping, got %T", doc)
	}

	hosts, _ := root["hosts"].([]any)
	var targets []target.Target
	for i, h := range hosts {
		host, ok := h.(map[string]any)
		if !ok {
			logrus.WithField("index", i).Warn("skipping host entry that is not a mapping")
			continue
		}
		ip := stringValue(host["ip"])
		ports, _ := host["ports"].([]any)
		for _, p := range ports {
			entry, ok := p.(map[string]any)
			if !ok {
				continue
			}
			service, _ := entry["service"].(string)
			if _, web := webServices[service]; !web {
				continue
			}
			port, ok := intValue(entry["port"])
			if ip == "" || !ok {
				logrus.WithFields(logrus.Fields{
					"ip":   host["ip"],
					"port": entry["port"],
				}).Warn("web service entry has a missing or invalid ip or port")
			}
			targets = append(targets, target.Target{IP: ip, Port: port})
		}
	}
	return targets, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// maxPort is the largest valid TCP port.
const maxPort = 65535

// intValue converts a decoded port value. JSON numbers arrive as json.Number,
// YAML integers as int or uint64. Values outside 0..65535 are rejected.
func intValue(v any) (int, bool) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > maxPort {
			return 0, false
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) || x < 0 || x > maxPort {
			return 0, false
		}
		n = int64(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			if ferr != nil || f != math.Trunc(f) || f < 0 || f > maxPort {
				return 0, false
			}
			i = int64(f)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < 0 || n > maxPort {
		return 0, false
	}
	return int(n), true
}
