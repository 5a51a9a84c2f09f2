package ids

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"storybook/pkg/storytree"
)

type Scheme string

const (
	SchemeUUID  Scheme = "uuid"
	SchemeKSUID Scheme = "ksuid"
)

// UUID returns random version 4 UUIDs.
func UUID() string {
	return uuid.NewString()
}

// KSUID returns k-sortable ids, so canonical ids of one story sort in the
// order they were minted.
func KSUID() string {
	return ksuid.New().String()
}

// ByScheme resolves a configured scheme name. The empty name means uuid.
func ByScheme(name string) (storytree.IDFunc, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(name))) {
	case "", SchemeUUID:
		return UUID, nil
	case SchemeKSUID:
		return KSUID, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", name)
	}
}
