// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the WordChain next-word prediction service.

WordChain learns word-transition counts from a directory of plain-text
corpora and predicts the most likely next words for a text prefix. It looks
at the last two words first, falls back to the last word, and finally to the
overall most frequent followers. Sources can be switched on and off at
runtime; every change retrains the model from the active sources.

# Usage

Serve the JSON API on the configured address:

	wordchain serve

Serve msgpack IPC over stdin/stdout for editor integrations:

	wordchain ipc

Try predictions interactively:

	wordchain cli -n 5

Every command accepts:

	--config string   path to a config.toml
	--sources string  corpus directory (overrides [sources].dir)
	-d, --debug       debug logging with timestamps

# Configuration

The config file is created with defaults when missing:

	[server]
	addr = "127.0.0.1:5000"
	default_suggestions = 3
	max_suggestions = 20
	max_text_length = 4096

	[sources]
	dir = "sources"
	extensions = [".txt"]
	watch = true
	debounce_ms = 250
	seed_samples = true
	read_workers = 4

	[cli]
	default_suggestions = 5

When the sources directory does not exist it is created and seeded with two
sample texts. With watch enabled, new or edited files are picked up without a
restart.

# HTTP

	POST /predict        {"text": "the cat", "k": 3}
	GET  /sources
	POST /toggle_source  {"source": "sample1.txt", "active": false}
	POST /complete       {"prefix": "ca"}
	GET  /stats
	GET  /health
	GET  /metrics

# IPC

See package server for the msgpack protocol.
*/
package main

import (
	"os"

	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0"
	AppName = "wordchain"
	gh      = "https://github.com/bastiangx/wordchain"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
