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

// Command filequeue is a small CLI for exercising and inspecting a
// filequeue directory by hand; it is not part of the library's API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/filequeue/filequeue"
	"github.com/filequeue/filequeue/serializer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "filequeue",
		Short: "Inspect and exercise a filequeue directory",
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML or JSON config file")
	cmd.PersistentFlags().String("path", "", "queue directory (overrides config)")

	cmd.AddCommand(
		newPutCmd(&cfgFile),
		newGetCmd(&cfgFile),
		newStatCmd(&cfgFile),
	)
	return cmd
}

// openFromCmd loads the config file (if any), lets --path override it, and
// opens a string-valued queue through the JSON serializer.
func openFromCmd(cmd *cobra.Command, cfgFile string) (*filequeue.Queue[string], error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	if p, _ := cmd.Flags().GetString("path"); p != "" {
		cfg.Path = p
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("no queue path given: pass --path or set path in --config")
	}

	return filequeue.Open(cfg.options(), serializer.NewJSON[string]())
}

func newPutCmd(cfgFile *string) *cobra.Command {
	var block bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "put <item>",
		Short: "Append an item to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := openFromCmd(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer q.Close()

			if err := q.Put(args[0], block, timeout); err != nil {
				return fmt.Errorf("put failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&block, "block", false, "block until there is room")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "max time to block (0 = forever)")
	return cmd
}

func newGetCmd(cfgFile *string) *cobra.Command {
	var block, taskDone bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Pop the next item from the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := openFromCmd(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer q.Close()

			item, err := q.Get(block, timeout)
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}
			fmt.Println(item)

			if taskDone {
				if err := q.TaskDone(); err != nil {
					return fmt.Errorf("task_done failed: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&block, "block", false, "block until an item is available")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "max time to block (0 = forever)")
	cmd.Flags().BoolVar(&taskDone, "task-done", true, "immediately confirm the item with TaskDone")
	return cmd
}

func newStatCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Print the queue's current size and whether it is empty or full",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := openFromCmd(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer q.Close()

			fmt.Printf("size=%d empty=%t full=%t\n", q.Size(), q.Empty(), q.Full())
			return nil
		},
	}
	return cmd
}
