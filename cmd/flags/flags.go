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

// Package flags contains shared command line flag types.
package flags

import (
	"time"

	"github.com/jtuo/pik-laskutin/lib/date"
)

// DateFlag parses ISO or Finnish dates.
type DateFlag time.Time

// Value returns the flag value.
func (f DateFlag) Value() time.Time {
	return time.Time(f)
}

func (f *DateFlag) String() string {
	if time.Time(*f).IsZero() {
		return ""
	}
	return time.Time(*f).Format("2006-01-02")
}

// Set parses the flag.
func (f *DateFlag) Set(v string) error {
	t, err := date.Parse(v)
	if err != nil {
		return err
	}
	*f = DateFlag(t)
	return nil
}

// Type returns the flag type.
func (f DateFlag) Type() string {
	return "date"
}
