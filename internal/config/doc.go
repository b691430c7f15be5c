// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

/*
Package config provides centralized configuration management for Showlist.

Configuration is assembled with koanf from three layered sources, with
later layers overriding earlier ones:

 1. Built-in defaults (always complete and valid)
 2. An optional YAML config file
 3. SHOWLIST_-prefixed environment variables

# Config File

The file is searched at showlist.yaml, showlist.yml,
/etc/showlist/config.yaml, and /etc/showlist/config.yml, in that order.
SHOWLIST_CONFIG_PATH overrides the search. A minimal file:

	engine:
	  keep_threshold: 25
	  weights:
	    genre: 0.3
	storage:
	  data_dir: /var/lib/showlist
	logging:
	  level: debug
	  format: console

# Environment Variables

Engine scoring (EngineConfig):
  - SHOWLIST_WEIGHT_TWO_TOWER: Embedding similarity weight (default: 0.35)
  - SHOWLIST_WEIGHT_RULE_BASED: Affinity-rule weight (default: 0.5)
  - SHOWLIST_WEIGHT_GENRE: Genre-overlap weight (default: 0.2)
  - SHOWLIST_WEIGHT_LEARNED: Learned-model weight (default: 0.10)
  - SHOWLIST_KEEP_THRESHOLD: Keep score for reason-less candidates (default: 20)
  - SHOWLIST_DEFAULT_LIMIT: Result count when callers pass none (default: 20)
  - SHOWLIST_MAX_LIMIT: Hard result ceiling (default: 100)
  - SHOWLIST_TRAIN_MIN_FAVORITES: History gate for first training (default: 10)
  - SHOWLIST_TRAIN_MIN_NEW_FAVORITES: Growth gate between trainings (default: 3)
  - SHOWLIST_TRAIN_TIMEOUT: Per-run training deadline (default: 1m)

Embedding cache and fetcher (EmbeddingConfig):
  - SHOWLIST_EMBEDDING_CACHE_CAPACITY: Cached vector limit (default: 300)
  - SHOWLIST_EMBEDDING_CACHE_TTL: Vector freshness window (default: 168h)
  - SHOWLIST_EMBEDDING_FETCH_BATCH_SIZE: Pairs per request (default: 30)
  - SHOWLIST_EMBEDDING_REQUESTS_PER_SECOND: Call rate limit (default: 4)
  - SHOWLIST_EMBEDDING_FETCH_BURST: Rate limiter burst (default: 2)
  - SHOWLIST_EMBEDDING_BREAKER_FAILURES: Failures to open breaker (default: 3)
  - SHOWLIST_EMBEDDING_BREAKER_TIMEOUT: Breaker open duration (default: 1m)

Storage (StorageConfig):
  - SHOWLIST_DATA_DIR: Root for persisted state (default: data)
  - SHOWLIST_STORAGE_IN_MEMORY: Ephemeral backend, no disk (default: false)
  - SHOWLIST_KEEP_MODEL_VERSIONS: Model snapshots retained (default: 3)

Change notifications (EventsConfig):
  - SHOWLIST_RECOMPUTE_QUIET: Recompute quiet period (default: 500ms)
  - SHOWLIST_TRAINING_QUIET: Training quiet period (default: 2s)

Supervision tree (SupervisorConfig):
  - SHOWLIST_SUPERVISOR_FAILURE_THRESHOLD: Failures before backoff (default: 5)
  - SHOWLIST_SUPERVISOR_FAILURE_DECAY: Failure decay in seconds (default: 30)
  - SHOWLIST_SUPERVISOR_FAILURE_BACKOFF: Backoff duration (default: 15s)
  - SHOWLIST_SUPERVISOR_SHUTDOWN_TIMEOUT: Graceful-stop wait (default: 10s)

Logging (LoggingConfig):
  - SHOWLIST_LOG_LEVEL: trace, debug, info, warn, error, fatal, panic (default: info)
  - SHOWLIST_LOG_FORMAT: json or console (default: json)
  - SHOWLIST_LOG_CALLER: Include caller file:line (default: false)

# Validation

Load validates the merged result before returning it: field ranges run
through go-playground/validator tags on the config structs, and
cross-field rules (limit ordering, data dir presence) are checked by
hand. A failed validation aborts startup; there is no partial config.

Note that EngineConfig duplicates the value ranges that
recommend.Config.Validate enforces for direct library users. The two
must stay in sync; config_test.go pins the shared defaults.
*/
package config
