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

// Package cmd assembles the command line interface.
package cmd

import (
	"github.com/jtuo/pik-laskutin/cmd/accounts"
	"github.com/jtuo/pik-laskutin/cmd/invoice"
	"github.com/jtuo/pik-laskutin/cmd/ndaconvert"
	"github.com/jtuo/pik-laskutin/cmd/validate"

	"github.com/spf13/cobra"
)

// CreateCmd creates the root command.
func CreateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:           "pik-laskutin",
		Short:         "pik-laskutin: batch billing for the gliding club",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.AddCommand(invoice.CreateCmd())
	c.AddCommand(validate.CreateCmd())
	c.AddCommand(ndaconvert.CreateCmd())
	c.AddCommand(accounts.CreateCmd())
	return c
}
