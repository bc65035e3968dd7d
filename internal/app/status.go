package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/offsync/internal/domain"
)

// Status is a snapshot of the local offline state
type Status struct {
	SiteURL        string
	State          domain.SyncState
	LookupsEnabled bool
	Permission     bool
	Records        []domain.VersionRecord
	Captures       int64
	Stats          map[string]interface{}
}

// Status reports the controller state, stored manifest versions and the
// capture store size
func (a *App) Status(ctx context.Context) (*Status, error) {
	records, err := a.backend.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifest versions: %w", err)
	}
	allowed, err := a.controller.CheckPermission(ctx)
	if err != nil {
		return nil, err
	}

	return &Status{
		SiteURL:        a.config.Site.RootURL,
		State:          a.controller.State(),
		LookupsEnabled: a.backend.LookupsEnabled(),
		Permission:     allowed,
		Records:        records,
		Captures:       a.captures.Size(),
		Stats:          a.captures.Stats(),
	}, nil
}

// Check is the outcome of one doctor check
type Check struct {
	Name   string
	Passed bool
	// Critical failures make the setup unusable
	Critical bool
	Detail   string
}

// Doctor checks that the site, the storage directory and the permission
// policy are usable
func (a *App) Doctor(ctx context.Context) []Check {
	var checks []Check

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	refs, err := a.manifests.FetchList(probeCtx)
	if err != nil {
		checks = append(checks, Check{Name: "Manifest list", Critical: true, Detail: err.Error()})
	} else {
		checks = append(checks, Check{Name: "Manifest list", Passed: true, Critical: true,
			Detail: fmt.Sprintf("%d manifests at %s", len(refs), a.manifests.ListURL())})
	}

	if a.config.Storage.InMemory {
		checks = append(checks, Check{Name: "Storage directory", Passed: true, Detail: "in memory"})
	} else {
		checks = append(checks, checkWritable(a.config.Storage.Directory))
	}

	allowed, err := a.controller.CheckPermission(ctx)
	switch {
	case err != nil:
		checks = append(checks, Check{Name: "Storage permission", Critical: true, Detail: err.Error()})
	case !allowed:
		checks = append(checks, Check{Name: "Storage permission", Critical: true,
			Detail: "not granted (run `offsync grant`)"})
	default:
		checks = append(checks, Check{Name: "Storage permission", Passed: true, Critical: true, Detail: "granted"})
	}

	online, _ := a.monitor.Probe(probeCtx)
	detail := "probe reachable"
	if !online {
		detail = "probe unreachable"
	}
	checks = append(checks, Check{Name: "Connectivity", Passed: online, Detail: detail})

	return checks
}

func checkWritable(dir string) Check {
	c := Check{Name: "Storage directory", Critical: true, Detail: dir}
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.Detail = err.Error()
		return c
	}
	probe := filepath.Join(dir, ".offsync_write_test")
	if err := os.WriteFile(probe, nil, 0600); err != nil {
		c.Detail = err.Error()
		return c
	}
	_ = os.Remove(probe)
	c.Passed = true
	return c
}
