package sysversion

import (
	"context"
	"errors"
	"fmt"

	"github.com/fox-one/pkg/property"
)

const (
	// SysVersionKey property key holding the ledger schema version
	SysVersionKey = "sysversion"
	// Current schema version written by migrate
	Current int64 = 1
)

// ErrOutdated the database was migrated by an older binary
var ErrOutdated = errors.New("sysversion: database schema is outdated, run migrate")

func ReadSysVersion(ctx context.Context, property property.Store) (int64, error) {
	v, err := property.Get(ctx, SysVersionKey)
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// WriteSysVersion records the schema version of this binary
func WriteSysVersion(ctx context.Context, property property.Store) error {
	return property.Save(ctx, SysVersionKey, Current)
}

// Check fails unless the stored version matches Current
func Check(ctx context.Context, property property.Store) error {
	v, err := ReadSysVersion(ctx, property)
	if err != nil {
		return err
	}

	switch {
	case v < Current:
		return ErrOutdated
	case v > Current:
		return fmt.Errorf("sysversion: database schema %d is newer than %d", v, Current)
	}

	return nil
}
