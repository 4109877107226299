// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

// Package feed classifies the freeform text of system-notification
// messages into structured feed variants.
//
// A feed is carried as the text of an otherwise ordinary message; the
// payload is a JSON object whose feedType discriminant selects the
// variant. Fields belonging to other variants are simply absent.
package feed

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Type discriminates the feed variants.
type Type int

// Feed type discriminants as carried on the wire.
const (
	LocalLeave      Type = 0
	Invite          Type = 1
	Leave           Type = 2
	SecretLeave     Type = 3
	OpenJoin        Type = 4
	OpenLinkDeleted Type = 5
	OpenKick        Type = 6
	ChatKicked      Type = 7
	DeleteAll       Type = 8
	OpenHandover    Type = 11
)

// A Member names one user referenced by a feed.
type Member struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickName"`
}

// A Feed is one parsed system notification. Only the fields belonging
// to its Type are populated; the rest stay at their zero value. Hidden
// is a pointer because an absent flag means "unspecified", which is not
// the same thing as false.
type Feed struct {
	Type    Type     `json:"feedType"`
	Members []Member `json:"members,omitempty"`
	Member  *Member  `json:"member,omitempty"`
	Inviter *Member  `json:"inviter,omitempty"`
	LogID   int64    `json:"logId,omitempty"`
	Hidden  *bool    `json:"hidden,omitempty"`
}

// Parse classifies a message's text payload into a Feed.
func Parse(text string) (*Feed, error) {
	var f Feed
	if err := json.Unmarshal([]byte(text), &f); err != nil {
		return nil, errors.Wrap(err, "Parse feed")
	}
	return &f, nil
}

// JoinedIDs collects the user ids a join-style feed names, in the order
// the feed names them. Invite feeds name every invited member;
// open-join feeds name the single joining member. Other feed types name
// nobody.
func (f *Feed) JoinedIDs() []int64 {
	switch f.Type {
	case Invite:
		ids := make([]int64, 0, len(f.Members))
		for _, m := range f.Members {
			ids = append(ids, m.UserID)
		}
		return ids
	case OpenJoin:
		if f.Member != nil {
			return []int64{f.Member.UserID}
		}
	}
	return nil
}
