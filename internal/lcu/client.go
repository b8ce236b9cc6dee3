// Package lcu talks to the local game client API for the champion select
// skin carousel.
package lcu

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/install"
	"github.com/xxxsen/skinmgr/internal/metadata"
	"github.com/xxxsen/skinmgr/internal/model"
	"github.com/xxxsen/skinmgr/internal/skinid"
)

const (
	carouselPath = "/lol-champ-select/v1/skin-carousel-skins"
	username     = "riot"
	loopbackHost = "127.0.0.1"
)

// Credentials are the API coordinates the client publishes in its lockfile.
type Credentials struct {
	Name     string
	PID      int
	Port     int
	Password string
	Protocol string
}

// ParseLockfile decodes "name:pid:port:password:protocol".
func ParseLockfile(content string) (*Credentials, error) {
	parts := strings.Split(strings.TrimSpace(content), ":")
	if len(parts) != 5 {
		return nil, fmt.Errorf("lockfile: expected 5 fields, got %d", len(parts))
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("lockfile: invalid pid %q: %w", parts[1], err)
	}
	port, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("lockfile: invalid port %q: %w", parts[2], err)
	}
	protocol := parts[4]
	if protocol == "" {
		protocol = "https"
	}
	return &Credentials{Name: parts[0], PID: pid, Port: port, Password: parts[3], Protocol: protocol}, nil
}

// ReadLockfile reads the lockfile of the installation at installPath.
func ReadLockfile(installPath string) (*Credentials, error) {
	data, err := os.ReadFile(install.LockfilePath(installPath))
	if err != nil {
		return nil, err
	}
	return ParseLockfile(string(data))
}

type carouselChild struct {
	ID         int      `json:"id"`
	ChampionID int      `json:"championId"`
	Colors     []string `json:"colors"`
}

type carouselSkin struct {
	ID         int             `json:"id"`
	ChampionID int             `json:"championId"`
	Name       string          `json:"name"`
	SplashPath string          `json:"splashPath"`
	ChildSkins []carouselChild `json:"childSkins"`
}

// Client handles local client API calls.
type Client struct {
	host       string
	password   string
	httpClient *http.Client
}

// NewClient creates a client for the given credentials. The local API serves
// a self-signed certificate on the loopback interface only.
func NewClient(cred *Credentials) *Client {
	return &Client{
		host:     fmt.Sprintf("%s://%s:%d", cred.Protocol, loopbackHost, cred.Port),
		password: cred.Password,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			},
		},
	}
}

// CarouselSkins returns the skins offered in champion select. Flat ids are
// decoded so the result addresses the organised repository.
func (c *Client) CarouselSkins(ctx context.Context) ([]model.Skin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+carouselPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("get carousel skins: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []carouselSkin
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode carousel skins: %w", err)
	}
	return normalize(raw), nil
}

func normalize(raw []carouselSkin) []model.Skin {
	out := make([]model.Skin, 0, len(raw))
	if len(raw) == 0 {
		return out
	}
	// The first carousel entry is the base skin, named after the champion.
	championName := raw[0].Name
	for _, rs := range raw {
		championID, skinID := skinid.Decode(rs.ID)
		chromas := make([]model.Chroma, 0, len(rs.ChildSkins))
		for _, child := range rs.ChildSkins {
			_, chromaID := skinid.Decode(child.ID)
			chromas = append(chromas, model.Chroma{
				ID:           chromaID,
				ChampionID:   championID,
				ChampionName: championName,
				Colors:       child.Colors,
			})
		}
		out = append(out, model.Skin{
			ID:           skinID,
			ChampionID:   championID,
			ChampionName: championName,
			Name:         rs.Name,
			Image:        metadata.SkinImage(rs.SplashPath, skinID),
			Chromas:      chromas,
		})
	}
	return out
}

// CurrentSelection returns the carousel of the client running from
// installPath. Any failure, including no running client, yields an empty list.
func CurrentSelection(ctx context.Context, installPath string) []model.Skin {
	logger := logutil.GetLogger(ctx)
	cred, err := ReadLockfile(installPath)
	if err != nil {
		logger.Debug("client lockfile unavailable", zap.Error(err))
		return []model.Skin{}
	}
	skins, err := NewClient(cred).CarouselSkins(ctx)
	if err != nil {
		logger.Debug("carousel query failed", zap.Int("port", cred.Port), zap.Error(err))
		return []model.Skin{}
	}
	return skins
}
