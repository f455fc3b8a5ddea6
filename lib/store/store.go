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

// Package store keeps the club's member and aircraft register in a local
// bolt database. The register feeds the known-id sets of the validator.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketMembers  = []byte("members")
	bucketAircraft = []byte("aircraft")
)

// Member is a registered club member account.
type Member struct {
	ID        uuid.UUID `json:"id"`
	AccountID string    `json:"account_id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Aircraft is a registered club aircraft.
type Aircraft struct {
	ID           uuid.UUID `json:"id"`
	Registration string    `json:"registration"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the register database.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the register at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketMembers, bucketAircraft} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// PutMember registers an account id, replacing a prior record for the
// same id.
func (s *Store) PutMember(accountID, name string) error {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return fmt.Errorf("empty account id")
	}
	m := Member{
		ID:        uuid.New(),
		AccountID: accountID,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMembers).Put([]byte(m.AccountID), data)
	})
}

// Members lists the register in account id order.
func (s *Store) Members() ([]Member, error) {
	var members []Member
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMembers).ForEach(func(_, v []byte) error {
			var m Member
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			members = append(members, m)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool { return members[i].AccountID < members[j].AccountID })
	return members, nil
}

// PutAircraft registers an aircraft. Registrations are stored uppercase.
func (s *Store) PutAircraft(registration string) error {
	registration = strings.ToUpper(strings.TrimSpace(registration))
	if registration == "" {
		return fmt.Errorf("empty registration")
	}
	a := Aircraft{
		ID:           uuid.New(),
		Registration: registration,
		CreatedAt:    time.Now().UTC(),
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketAircraft).Put([]byte(a.Registration), data)
	})
}

// Aircraft lists the register in registration order.
func (s *Store) Aircraft() ([]Aircraft, error) {
	var fleet []Aircraft
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAircraft).ForEach(func(_, v []byte) error {
			var a Aircraft
			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}
			fleet = append(fleet, a)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(fleet, func(i, j int) bool { return fleet[i].Registration < fleet[j].Registration })
	return fleet, nil
}

// KnownIDs returns the member account ids as a validator id set.
func (s *Store) KnownIDs() (map[string]bool, error) {
	members, err := s.Members()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(members))
	for _, m := range members {
		ids[m.AccountID] = true
	}
	return ids, nil
}
