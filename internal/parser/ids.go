// Package parser provides argument, date and duration parsing for the timesheets CLI.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
)

// ParseID parses a positive local id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewUserErrorWithField("id", s, "Invalid id", "Ids are positive whole numbers")
	}
	return id, nil
}

// ParseIDs parses ids given as separate arguments or comma separated lists.
// Duplicates are dropped and the first-seen order is kept.
func ParseIDs(args []string) ([]int64, error) {
	var set model.IDSet
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := ParseID(part)
			if err != nil {
				return nil, err
			}
			set = set.Add(id)
		}
	}
	if len(set) == 0 {
		return nil, errors.NewUserError("No ids given", "Pass at least one id")
	}
	return []int64(set), nil
}

// ParseRef parses a remote id reference. Empty input means unset; negative
// values are provisional ids of records created locally.
func ParseRef(s string) (model.Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Unresolved, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return model.Unresolved, errors.NewUserErrorWithField("reference", s, "Invalid remote id",
			"Use the remote id shown by the list commands")
	}
	return model.Ref(n), nil
}

// ParseAssignee parses an assignee filter entry. "ACCOUNT:USER" names a user
// in one account; a bare "USER" matches that remote id in any account.
func ParseAssignee(s string) (model.AssigneeRef, error) {
	s = strings.TrimSpace(s)
	ref := model.AssigneeRef{AccountID: model.AllAccounts}

	userPart := s
	if acc, user, ok := strings.Cut(s, ":"); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(acc), 10, 64)
		if err != nil || id < 0 {
			return ref, errors.NewUserErrorWithField("assignee", s, "Invalid account in assignee",
				"Use ACCOUNT:USER, for example 2:17")
		}
		ref.AccountID = id
		userPart = user
	}

	uid, err := strconv.ParseInt(strings.TrimSpace(userPart), 10, 64)
	if err != nil {
		return ref, errors.NewUserErrorWithField("assignee", s, "Invalid user id in assignee",
			"Use ACCOUNT:USER or a bare remote user id")
	}
	ref.UserID = uid
	return ref, nil
}

// ParseAssignees parses every assignee filter entry.
func ParseAssignees(values []string) ([]model.AssigneeRef, error) {
	refs := make([]model.AssigneeRef, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			ref, err := ParseAssignee(part)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// ParseAccountScope parses the --account flag. "all" and "-1" widen the
// scope to every account.
func ParseAccountScope(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "all" {
		return model.AllAccounts, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < model.AllAccounts {
		return 0, fmt.Errorf("%w: account scope %q", errors.ErrInvalidFilter, s)
	}
	return n, nil
}

// ParseQuadrant parses a quadrant given by name (do, plan, delegate, delete)
// or number. Range checks on numbers are left to validation.
func ParseQuadrant(s string) (int, error) {
	s = strings.TrimSpace(s)
	for q := model.QuadrantDo; q <= model.QuadrantDelete; q++ {
		if strings.EqualFold(s, q.String()) {
			return int(q), nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errors.ErrInvalidQuadrant, s)
	}
	return n, nil
}
