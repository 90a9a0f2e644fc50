package preflight

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"meetingroom/internal/config"
	"meetingroom/internal/storage"
)

const probeKey = "__preflight__"

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Name    string
	Status  string // "pass", "fail", "warning"
	Message string
	Error   error
}

// Checker performs pre-flight checks before the server starts
type Checker struct {
	cfg     *config.Config
	local   storage.Backend
	remote  storage.Backend
	timeout time.Duration
}

// NewChecker creates a new preflight checker. remote may be nil.
func NewChecker(cfg *config.Config, local, remote storage.Backend) *Checker {
	return &Checker{
		cfg:     cfg,
		local:   local,
		remote:  remote,
		timeout: 5 * time.Second,
	}
}

// RunAll runs all preflight checks and returns results
func (c *Checker) RunAll(ctx context.Context) []CheckResult {
	log.Println("🔍 Running pre-flight checks...")

	results := []CheckResult{
		c.checkLocalStore(ctx),
		c.checkRemoteStore(ctx),
		c.checkStaffData(),
		c.checkLogin(),
	}

	passed := 0
	failed := 0
	warnings := 0

	for _, result := range results {
		switch result.Status {
		case "pass":
			log.Printf("   ✅ %s: %s", result.Name, result.Message)
			passed++
		case "fail":
			log.Printf("   ❌ %s: %s", result.Name, result.Message)
			if result.Error != nil {
				log.Printf("      Error: %v", result.Error)
			}
			failed++
		case "warning":
			log.Printf("   ⚠️  %s: %s", result.Name, result.Message)
			warnings++
		}
	}

	log.Printf("📊 Pre-flight summary: %d passed, %d failed, %d warnings", passed, failed, warnings)

	return results
}

// HasFailures returns true if any check failed
func HasFailures(results []CheckResult) bool {
	for _, result := range results {
		if result.Status == "fail" {
			return true
		}
	}
	return false
}

// probe reads a key that never exists; a miss proves the tier answers
func (c *Checker) probe(ctx context.Context, b storage.Backend) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := b.Get(ctx, probeKey)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// checkLocalStore verifies the durable local tier is reachable
func (c *Checker) checkLocalStore(ctx context.Context) CheckResult {
	if c.local == nil {
		return CheckResult{
			Name:    "Local Store",
			Status:  "fail",
			Message: "No local store configured",
		}
	}

	if err := c.probe(ctx, c.local); err != nil {
		return CheckResult{
			Name:    "Local Store",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot reach %s store (%s)", c.local.Name(), c.cfg.LocalStore),
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Local Store",
		Status:  "pass",
		Message: fmt.Sprintf("%s store reachable", c.cfg.LocalStore),
	}
}

// checkRemoteStore reports on the optional remote tier. It never fails:
// the chain falls back to the local tier when the service is down.
func (c *Checker) checkRemoteStore(ctx context.Context) CheckResult {
	if c.remote == nil {
		return CheckResult{
			Name:    "Remote Storage",
			Status:  "warning",
			Message: "REMOTE_STORAGE_URL not set, running on local storage only",
		}
	}

	if err := c.probe(ctx, c.remote); err != nil {
		return CheckResult{
			Name:    "Remote Storage",
			Status:  "warning",
			Message: fmt.Sprintf("Remote storage at %s unreachable, falling back to local", c.cfg.RemoteStorageURL),
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Remote Storage",
		Status:  "pass",
		Message: fmt.Sprintf("Remote storage at %s reachable", c.cfg.RemoteStorageURL),
	}
}

// checkStaffData verifies the staff file parses when one is configured
func (c *Checker) checkStaffData() CheckResult {
	if c.cfg.StaffDataFile == "" {
		return CheckResult{
			Name:    "Staff Directory",
			Status:  "warning",
			Message: "STAFF_DATA_FILE not set, using the built-in staff list",
		}
	}

	staff, err := config.LoadStaffFile(c.cfg.StaffDataFile)
	if err != nil {
		return CheckResult{
			Name:    "Staff Directory",
			Status:  "warning",
			Message: fmt.Sprintf("Cannot load %s, using the built-in staff list", c.cfg.StaffDataFile),
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Staff Directory",
		Status:  "pass",
		Message: fmt.Sprintf("Loaded %d staff entries from %s", len(staff), c.cfg.StaffDataFile),
	}
}

func (c *Checker) checkLogin() CheckResult {
	if !c.cfg.AuthEnabled() {
		return CheckResult{
			Name:    "Login",
			Status:  "warning",
			Message: "AUTH_USERNAME not set, the API is open",
		}
	}

	return CheckResult{
		Name:    "Login",
		Status:  "pass",
		Message: fmt.Sprintf("Shared login enabled for %q", c.cfg.AuthUsername),
	}
}
