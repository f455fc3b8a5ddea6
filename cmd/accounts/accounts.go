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

// Package accounts administers the member and aircraft register.
package accounts

import (
	"fmt"
	"os"

	"github.com/jtuo/pik-laskutin/lib/reader"
	"github.com/jtuo/pik-laskutin/lib/store"

	"github.com/spf13/cobra"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the accounts command.
	var c = &cobra.Command{
		Use:   "accounts",
		Short: "administer the member and aircraft register",
	}
	c.PersistentFlags().StringVar(&r.db, "db", "pik.db", "register database file")

	c.AddCommand(r.addMemberCmd())
	c.AddCommand(r.importMembersCmd())
	c.AddCommand(r.listMembersCmd())
	c.AddCommand(r.addAircraftCmd())
	c.AddCommand(r.listAircraftCmd())
	c.AddCommand(r.exportIDsCmd())
	return c
}

type runner struct {
	db string
}

func (r *runner) open() (*store.Store, error) {
	return store.Open(r.db)
}

func (r *runner) addMemberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-member <account-id> [name]",
		Short: "register a member account",
		Args:  cobra.RangeArgs(1, 2),
		Run: wrap(func(cmd *cobra.Command, args []string) error {
			s, err := r.open()
			if err != nil {
				return err
			}
			defer s.Close()
			name := ""
			if len(args) > 1 {
				name = args[1]
			}
			return s.PutMember(args[0], name)
		}),
	}
}

func (r *runner) importMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-members <ids-file>...",
		Short: "import member accounts from id files",
		Args:  cobra.MinimumNArgs(1),
		Run: wrap(func(cmd *cobra.Command, args []string) error {
			ids, err := reader.ReadIDs(args)
			if err != nil {
				return err
			}
			s, err := r.open()
			if err != nil {
				return err
			}
			defer s.Close()
			for id := range ids {
				if err := s.PutMember(id, ""); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d member accounts\n", len(ids))
			return nil
		}),
	}
}

func (r *runner) listMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-members",
		Short: "list registered member accounts",
		Args:  cobra.NoArgs,
		Run: wrap(func(cmd *cobra.Command, args []string) error {
			s, err := r.open()
			if err != nil {
				return err
			}
			defer s.Close()
			members, err := s.Members()
			if err != nil {
				return err
			}
			for _, m := range members {
				if m.Name != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.AccountID, m.Name)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), m.AccountID)
				}
			}
			return nil
		}),
	}
}

func (r *runner) addAircraftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-aircraft <registration>",
		Short: "register an aircraft",
		Args:  cobra.ExactArgs(1),
		Run: wrap(func(cmd *cobra.Command, args []string) error {
			s, err := r.open()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.PutAircraft(args[0])
		}),
	}
}

func (r *runner) listAircraftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-aircraft",
		Short: "list registered aircraft",
		Args:  cobra.NoArgs,
		Run: wrap(func(cmd *cobra.Command, args []string) error {
			s, err := r.open()
			if err != nil {
				return err
			}
			defer s.Close()
			fleet, err := s.Aircraft()
			if err != nil {
				return err
			}
			for _, a := range fleet {
				fmt.Fprintln(cmd.OutOrStdout(), a.Registration)
			}
			return nil
		}),
	}
}

func (r *runner) exportIDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-ids",
		Short: "print member account ids as a known-id file",
		Args:  cobra.NoArgs,
		Run: wrap(func(cmd *cobra.Command, args []string) error {
			s, err := r.open()
			if err != nil {
				return err
			}
			defer s.Close()
			members, err := s.Members()
			if err != nil {
				return err
			}
			for _, m := range members {
				fmt.Fprintln(cmd.OutOrStdout(), m.AccountID)
			}
			return nil
		}),
	}
}

func wrap(f func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := f(cmd, args); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			os.Exit(1)
		}
	}
}
