// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

// Package recommend implements a hybrid recommendation engine for live
// event listings.
//
// # Architecture
//
// The engine blends four signals into one 0-100 score per candidate event:
//
//   - Rule-Based: direct artist and venue affinity from the favorites history
//   - Learned: a small feed-forward model (or heuristic fallback) over
//     encoded profile and candidate features
//   - Genre: overlap between the listener's genre profile and the candidate
//     artist's genres
//   - Two-Tower: cosine similarity between the mean favorite embedding and
//     the candidate's embedding
//
// Candidates that clear the keep threshold, or that earned at least one
// explanation reason, are ranked by event date and score. Every kept
// recommendation carries a human-readable explanation with a confidence
// value.
//
// # Design Principles
//
//   - Deterministic: identical inputs produce identical output ordering
//   - Degradation-first: a missing collaborator (genres, embeddings) or a
//     malformed input zeroes its component; a pass never fails outright
//   - Observable: passes, gate skips, and candidate counts feed prometheus
//     collectors, and every pass logs under a unique trace ID
//   - Durable: computed lists persist through the injected ListStore and
//     survive restarts minus stale entries
//
// # Cold Start
//
// The engine computes nothing until the favorites history holds at least
// three interactions. Below the gate it returns an empty list and logs the
// skip; there is no popularity fallback.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, scorer, logger)
//	if err != nil {
//	    return err
//	}
//	defer engine.Dispose()
//
//	engine.SetGenreLookup(lookup)
//	engine.SetEmbeddings(cache, fetcher)
//	engine.SetListStore(store)
//
//	recs := engine.ComputeRecommendations(ctx, catalog, favorites, 20, "en")
//
// # Thread Safety
//
// The engine is safe for concurrent use. ComputeRecommendations and the
// training entry points serialize against each other; cached-list reads
// take a shared lock.
package recommend
