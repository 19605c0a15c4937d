// Package app holds the tracker's application state and the views built from it.
package app

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"sync"
	"time"

	"visa-tracker/internal/common/config"
	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/common/logger"
	"visa-tracker/internal/common/validation"
	"visa-tracker/internal/exporter"
	"visa-tracker/internal/models"
	"visa-tracker/internal/stats"
	"visa-tracker/internal/storage"
	"visa-tracker/internal/store"
	"visa-tracker/pkg/catalog"
)

type Deps struct {
	Config   *config.Config
	Store    *store.Store
	KV       storage.KV
	Catalog  *catalog.Catalog
	Exporter *exporter.Exporter
	Logger   logger.Logger
	Clock    func() time.Time
}

// App is the state shared by every request: the record store, the dark-mode preference,
// the admin gate and the update schedule.
type App struct {
	Store    *store.Store
	Catalog  *catalog.Catalog
	Gate     *Gate
	Exporter *exporter.Exporter

	kv       storage.KV
	validate *validation.RecordValidator
	log      logger.Logger
	now      func() time.Time
	loc      *time.Location
	schedule Schedule

	mu       sync.RWMutex
	darkMode bool

	groups groupCache
}

func New(d Deps) (*App, error) {
	last, next, err := d.Config.UpdateInfo.Parse()
	if err != nil {
		return nil, apperrors.NewInvalidArgumentError(err.Error())
	}

	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	cat := d.Catalog
	if cat == nil {
		cat = catalog.Builtin()
	}

	return &App{
		Store:    d.Store,
		Catalog:  cat,
		Gate:     NewGate(d.Config.Admin.Passcode),
		Exporter: d.Exporter,
		kv:       d.KV,
		validate: validation.NewRecordValidator(cat),
		log:      d.Logger.Component("app"),
		now:      clock,
		loc:      d.Config.Location(),
		schedule: Schedule{LastUpdate: last, NextUpdate: next},
	}, nil
}

// Init loads the record list and the dark-mode preference. Storage problems fall back to
// defaults and never fail Init.
func (a *App) Init(ctx context.Context) error {
	if err := a.Store.Init(ctx); err != nil {
		return err
	}

	dark := false
	data, found, err := a.kv.Get(ctx, storage.KeyDarkMode)
	switch {
	case err != nil:
		a.log.Warn("failed to read dark mode preference", map[string]interface{}{"error": err.Error()})
	case found:
		if err := json.Unmarshal(data, &dark); err != nil {
			a.log.Warn("ignoring corrupt dark mode preference", map[string]interface{}{"value": string(data)})
			dark = false
		}
	}

	a.mu.Lock()
	a.darkMode = dark
	a.mu.Unlock()

	a.log.Info("application state initialised", map[string]interface{}{
		"records":   a.Store.Len(),
		"dark_mode": dark,
	})
	return nil
}

// Teardown releases nothing; storage handles are owned by the caller.
func (a *App) Teardown() {}

// Now returns the current instant in the configured location.
func (a *App) Now() time.Time {
	return a.now().In(a.loc)
}

// Today is the civil date of Now.
func (a *App) Today() models.Date {
	return models.DateOf(a.Now())
}

// ==========================
// Dark mode
// ==========================

func (a *App) DarkMode() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.darkMode
}

// SetDarkMode persists the preference before applying it.
func (a *App) SetDarkMode(ctx context.Context, on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setDarkModeLocked(ctx, on)
}

func (a *App) ToggleDarkMode(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := !a.darkMode
	if err := a.setDarkModeLocked(ctx, next); err != nil {
		return a.darkMode, err
	}
	return next, nil
}

func (a *App) setDarkModeLocked(ctx context.Context, on bool) error {
	if err := a.kv.Set(ctx, storage.KeyDarkMode, []byte(strconv.FormatBool(on))); err != nil {
		return apperrors.NewStorageWriteError(storage.KeyDarkMode, err)
	}
	a.darkMode = on
	return nil
}

// ==========================
// Update schedule
// ==========================

func (a *App) UpdateInfo() UpdateInfo {
	return UpdateInfo{
		LastUpdate: optionalTime(a.schedule.LastUpdate),
		NextUpdate: optionalTime(a.schedule.NextUpdate),
		Countdown:  a.schedule.Countdown(a.now()),
	}
}

// ==========================
// Group statistics cache
// ==========================

// groupCache keeps the group statistics of the latest store version.
type groupCache struct {
	mu      sync.Mutex
	version string
	byKey   map[stats.GroupKey][]stats.GroupStat
}

func (c *groupCache) get(version string, key stats.GroupKey, records []models.ApplicationRecord) []stats.GroupStat {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version == "" || c.version != version {
		c.version = version
		c.byKey = make(map[stats.GroupKey][]stats.GroupStat)
	}
	if groups, ok := c.byKey[key]; ok && version != "" {
		return append([]stats.GroupStat(nil), groups...)
	}

	groups, _ := stats.GroupStats(records, key)
	c.byKey[key] = groups
	return append([]stats.GroupStat(nil), groups...)
}

var errNoSink = stderrors.New("no export sink configured")
