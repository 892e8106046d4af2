// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"log"
	"sync"
	"time"
)

// =============================================================================
// NAVIGATION CONTROLLER
// =============================================================================

// ChangeFunc is invoked exactly once per accepted navigation.
type ChangeFunc func(previous, current ModuleID)

// Controller validates module requests, de-duplicates redundant
// transitions, and records dwell-time analytics. Safe for concurrent
// use; re-entrant requests from within the change callback are dropped.
type Controller struct {
	mu sync.Mutex

	enabled   map[ModuleID]bool
	current   ModuleID
	enteredAt time.Time

	// Re-entrancy guard: set while a navigation (including its change
	// callback) is being processed.
	navigating bool

	store    Store
	onChange ChangeFunc

	// Stamped into every analytics record
	userRole   string
	schoolPlan string

	closed bool
}

// Config holds configuration for the navigation controller.
type Config struct {
	// Enabled is the set of routable modules. Empty means all.
	Enabled []ModuleID

	// Store receives analytics records. Nil disables analytics.
	Store Store

	// UserRole and SchoolPlan are stamped into analytics records.
	UserRole   string
	SchoolPlan string
}

// NewController creates a navigation controller with no active module.
func NewController(cfg Config) *Controller {
	enabled := make(map[ModuleID]bool)
	modules := cfg.Enabled
	if len(modules) == 0 {
		modules = AllModules()
	}
	for _, m := range modules {
		enabled[m] = true
	}

	return &Controller{
		enabled:    enabled,
		current:    ModuleAuto,
		store:      cfg.Store,
		userRole:   cfg.UserRole,
		schoolPlan: cfg.SchoolPlan,
	}
}

// SetChangeCallback registers the function invoked on each accepted
// navigation. At most one callback is active at a time.
func (c *Controller) SetChangeCallback(fn ChangeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SetEnabled replaces the enabled module set. Used by config hot
// reload; does not affect the currently active module. An empty set
// means all modules, same as NewController.
func (c *Controller) SetEnabled(modules []ModuleID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(modules) == 0 {
		modules = AllModules()
	}
	c.enabled = make(map[ModuleID]bool, len(modules))
	for _, m := range modules {
		c.enabled[m] = true
	}
}

// Current returns the active module.
func (c *Controller) Current() ModuleID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// RequestModule asks the controller to switch to target. Disabled or
// duplicate targets are no-ops; a request arriving while another is
// being processed is dropped with a warning. The change callback runs
// exactly once per accepted request.
func (c *Controller) RequestModule(target ModuleID) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.navigating {
		log.Printf("NAV: dropped re-entrant request for %s", target)
		c.mu.Unlock()
		return
	}
	if target != ModuleAuto && !c.enabled[target] {
		log.Printf("NAV: module %s not enabled, ignoring", target)
		c.mu.Unlock()
		return
	}
	if target == c.current {
		c.mu.Unlock()
		return
	}

	c.navigating = true

	previous := c.current
	now := time.Now()

	// Exit record for the previous module, carrying its dwell time
	if previous != ModuleAuto {
		c.appendLocked(Record{
			ModuleID:          previous,
			Kind:              EventExit,
			Timestamp:         now,
			UserRole:          c.userRole,
			SchoolPlan:        c.schoolPlan,
			SessionDurationMs: now.Sub(c.enteredAt).Milliseconds(),
		})
	}

	c.current = target
	c.enteredAt = now

	if target != ModuleAuto {
		c.appendLocked(Record{
			ModuleID:   target,
			Kind:       EventEnter,
			Timestamp:  now,
			UserRole:   c.userRole,
			SchoolPlan: c.schoolPlan,
		})
	}

	callback := c.onChange
	c.mu.Unlock()

	// Callback runs outside the lock but inside the navigating guard,
	// so a synchronous RequestModule from within it is dropped.
	if callback != nil {
		callback(previous, target)
	}

	c.mu.Lock()
	c.navigating = false
	c.mu.Unlock()
}

// Close tears the controller down. If a module is active, a final exit
// record is synthesized so dwell-time accounting never leaks an open
// interval.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.current != ModuleAuto {
		now := time.Now()
		c.appendLocked(Record{
			ModuleID:          c.current,
			Kind:              EventExit,
			Timestamp:         now,
			UserRole:          c.userRole,
			SchoolPlan:        c.schoolPlan,
			SessionDurationMs: now.Sub(c.enteredAt).Milliseconds(),
		})
		c.current = ModuleAuto
	}

	return nil
}

// appendLocked writes an analytics record best-effort. Persistence
// failures are swallowed and logged, never propagated to the
// navigation decision.
func (c *Controller) appendLocked(rec Record) {
	if c.store == nil {
		return
	}
	if err := c.store.Append(rec); err != nil {
		log.Printf("NAV: analytics write failed: %v", err)
	}
}
