package region

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Region selects the content delivery preference for the fetch layer.
type Region int

const (
	// Mirror prefers the CDN mirror chain. This is the conservative
	// default when the probe cannot decide.
	Mirror Region = iota
	// Direct fetches straight from the origin host.
	Direct
)

func (r Region) String() string {
	if r == Direct {
		return "direct"
	}
	return "mirror"
}

const probeTimeout = 5 * time.Second

// Detector performs best-effort geolocation probes. Repeated detections
// that land on the same region do not re-log.
type Detector struct {
	probeURL string
	client   *http.Client
	logger   *slog.Logger

	mu      sync.Mutex
	current Region
	probed  bool
}

// NewDetector builds a detector against the given probe endpoint.
func NewDetector(probeURL string, client *http.Client, logger *slog.Logger) *Detector {
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}
	return &Detector{probeURL: probeURL, client: client, logger: logger, current: Mirror}
}

type probeResponse struct {
	Flag    json.Number `json:"flag"`
	Country string      `json:"country"`
}

// Detect probes the endpoint and returns the resulting region. On probe
// failure the last known region is kept (mirror-preferring before any
// successful probe).
func (d *Detector) Detect(ctx context.Context) Region {
	next, country, err := d.probe(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		if !d.probed {
			d.logger.Warn("region probe failed, defaulting to mirror CDN", "error", err)
			d.probed = true
		}
		return d.current
	}

	changed := !d.probed || next != d.current
	d.current = next
	d.probed = true
	if changed {
		if next == Direct {
			d.logger.Info("region probe selected direct origin downloads", "country", country)
		} else {
			d.logger.Info("region probe selected mirror CDN downloads")
		}
	}
	return d.current
}

func (d *Detector) probe(ctx context.Context) (Region, string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.probeURL, nil)
	if err != nil {
		return Mirror, "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return Mirror, "", err
	}
	defer resp.Body.Close()

	var payload probeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Mirror, "", err
	}
	if flag, err := payload.Flag.Int64(); err == nil && flag == 0 {
		return Direct, payload.Country, nil
	}
	return Mirror, payload.Country, nil
}
