// Copyright 2024 The Filequeue Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/filequeue/filequeue"
	"github.com/filequeue/filequeue/golibs/config"
)

// cliConfig mirrors filequeue.Options in a form that can be loaded from a
// YAML or JSON file and overlaid with FILEQUEUE_* environment variables,
// so a deployment doesn't have to construct Options literally in Go code.
type cliConfig struct {
	Path          string `json:"path"`
	MaxSize       int64  `json:"maxSize"`
	ChunkSize     int    `json:"chunkSize"`
	TempDir       string `json:"tempDir"`
	Autosave      bool   `json:"autosave"`
	Durability    string `json:"durability"`
	MaxOpenChunks int    `json:"maxOpenChunks"`
}

func defaultCliConfig() cliConfig {
	return cliConfig{ChunkSize: 1024, Durability: "sync_on_put"}
}

// loadConfig builds a cliConfig from an optional config file and the
// FILEQUEUE_ environment prefix, file values taking precedence over
// defaults and environment values taking precedence over the file.
func loadConfig(path string) (cliConfig, error) {
	e := config.NewEnricher(defaultCliConfig())
	if path != "" {
		if err := e.LoadFromFile(path); err != nil {
			return cliConfig{}, err
		}
	}
	if err := e.ApplyEnvVariables("FILEQUEUE", "_"); err != nil {
		return cliConfig{}, err
	}
	return e.Value(), nil
}

func (c cliConfig) durabilityMode() filequeue.DurabilityMode {
	switch c.Durability {
	case "sync_on_task_done":
		return filequeue.SyncOnTaskDone
	case "no_sync":
		return filequeue.NoSync
	default:
		return filequeue.SyncOnPut
	}
}

func (c cliConfig) options() filequeue.Options {
	return filequeue.Options{
		Path:          c.Path,
		MaxSize:       c.MaxSize,
		ChunkSize:     c.ChunkSize,
		TempDir:       c.TempDir,
		Autosave:      c.Autosave,
		Durability:    c.durabilityMode(),
		MaxOpenChunks: c.MaxOpenChunks,
	}
}
