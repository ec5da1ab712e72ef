package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"signalbox/internal/config"
	"signalbox/internal/logger"
)

const sourcesPath = "/datasource/all_sources.json"

// rtl-sdr capture sources are named after the receiver index, e.g. rtl433-0, rtladsb-1.
var rtlInterface = regexp.MustCompile(`^rtl[a-z0-9]*-(\d+)$`)

// Source is the subset of a Kismet datasource record the keeper reads.
type Source struct {
	Name      string `json:"kismet.datasource.name"`
	Interface string `json:"kismet.datasource.interface"`
	Running   int    `json:"kismet.datasource.running"`
	UUID      string `json:"kismet.datasource.uuid"`
}

// Index returns the receiver index encoded in the interface name, -1 for non rtl-sdr sources.
func (s *Source) Index() int {
	m := rtlInterface.FindStringSubmatch(s.Interface)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// KismetClient queries a Kismet server's REST API with HTTP basic auth.
type KismetClient struct {
	baseURL string
	cred    config.Credential
	client  *http.Client
}

func NewKismetClient(baseURL string, cred config.Credential, timeout time.Duration) *KismetClient {
	return &KismetClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cred:    cred,
		client:  &http.Client{Timeout: timeout},
	}
}

/**
 * Fetch all datasources known to the server
 * @param {context.Context} ctx - Request context
 * @returns {[]Source} Returns the decoded datasource list
 * @returns {error} Returns transport, auth or decode errors
 */
func (k *KismetClient) Sources(ctx context.Context) ([]Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.baseURL+sourcesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("kismet: build request: %w", err)
	}
	req.SetBasicAuth(k.cred.Username, k.cred.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kismet: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kismet: %s returned %s", sourcesPath, resp.Status)
	}

	var sources []Source
	if err := json.NewDecoder(resp.Body).Decode(&sources); err != nil {
		return nil, fmt.Errorf("kismet: decode sources: %w", err)
	}
	return sources, nil
}

/**
 * Report what is using a receiver index
 * @param {context.Context} ctx - Request context
 * @param {int} index - Receiver index from the device inventory
 * @returns {string} Returns the running source names joined by ", ", empty when unused
 * @returns {error} Returns the Sources error
 */
func (k *KismetClient) LookupByIndex(ctx context.Context, index int) (string, error) {
	if index < 0 {
		return "", nil
	}
	sources, err := k.Sources(ctx)
	if err != nil {
		return "", err
	}
	return UsageByIndex(sources, index), nil
}

// UsageByIndex picks the running sources bound to index.
func UsageByIndex(sources []Source, index int) string {
	var names []string
	for i := range sources {
		s := &sources[i]
		if s.Running == 0 || s.Index() != index {
			continue
		}
		name := s.Name
		if name == "" {
			name = s.Interface
		}
		names = append(names, name)
	}
	if len(names) > 0 {
		logger.Debugf("kismet: index %d used by %v", index, names)
	}
	return strings.Join(names, ", ")
}
