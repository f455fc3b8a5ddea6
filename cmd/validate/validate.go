// Copyright 2024 The pik-laskutin authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package validate checks the configured event sources without invoicing.
package validate

import (
	"fmt"
	"os"

	"github.com/jtuo/pik-laskutin/lib/billing/validate"
	"github.com/jtuo/pik-laskutin/lib/config"
	"github.com/jtuo/pik-laskutin/lib/reader"

	"github.com/spf13/cobra"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the validate command.
	var c = &cobra.Command{
		Use:   "validate <config.json>",
		Short: "validate the event sources",
		Long:  `Load the configured event sources and report events with unknown account ids.`,
		Args:  cobra.ExactArgs(1),
		Run:   r.run,
	}
	return c
}

type runner struct{}

func (r *runner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func (r runner) execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	events, err := reader.LoadEvents(cfg)
	if err != nil {
		return err
	}
	ids, err := reader.ReadIDs(cfg.ValidIDFiles)
	if err != nil {
		return err
	}
	v := &validate.Validator{KnownIDs: ids}
	v.Events(events).Render(cmd.OutOrStdout())
	return nil
}
