// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package config

import (
	"fmt"

	"github.com/aasimsyed/showlist/internal/validation"
)

// Validate checks that the merged configuration is usable. Field-level
// range checks run through the validator tags; cross-field rules that
// tags cannot express are checked by hand afterwards.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateLimits(); err != nil {
		return err
	}

	return c.validateStorage()
}

// validateLimits enforces ordering between the limit bounds.
func (c *Config) validateLimits() error {
	if c.Engine.Limits.MaxLimit < c.Engine.Limits.DefaultLimit {
		return fmt.Errorf("SHOWLIST_MAX_LIMIT (%d) must be >= SHOWLIST_DEFAULT_LIMIT (%d)",
			c.Engine.Limits.MaxLimit, c.Engine.Limits.DefaultLimit)
	}
	return nil
}

// validateStorage requires a data directory unless the in-memory
// backend is selected.
func (c *Config) validateStorage() error {
	if c.Storage.InMemory {
		return nil
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("SHOWLIST_DATA_DIR is required when SHOWLIST_STORAGE_IN_MEMORY=false")
	}
	return nil
}
