package env

import "fmt"

// Migration transforms the raw JSON bytes of a bucket from the schema
// version immediately below it to that version.
type Migration func([]byte) ([]byte, error)

// migrations[i] upgrades from version i to version i+1. Index 0 is
// unused (there is no version 0); a nil entry means that version bump
// changed nothing about this bucket's on-disk shape.
var migrations = make([]Migration, CurrentSchemaVersion)

// RegisterMigration installs the transform that upgrades a bucket from
// fromVersion to fromVersion+1. Called from package init in whichever
// file introduces the breaking change for that version.
func RegisterMigration(fromVersion int, m Migration) {
	if fromVersion < 1 || fromVersion >= CurrentSchemaVersion {
		panic(fmt.Sprintf("env: migration registered for out-of-range version %d", fromVersion))
	}
	migrations[fromVersion] = m
}

// Migrate runs data through every registered migration between
// fromVersion and CurrentSchemaVersion, in order. A nil step is a no-op.
func Migrate(data []byte, fromVersion int) ([]byte, error) {
	if fromVersion > CurrentSchemaVersion {
		return nil, fmt.Errorf("env: stored schema version %d is newer than this build's %d", fromVersion, CurrentSchemaVersion)
	}
	for v := fromVersion; v < CurrentSchemaVersion; v++ {
		step := migrations[v]
		if step == nil {
			continue
		}
		var err error
		data, err = step(data)
		if err != nil {
			return nil, fmt.Errorf("env: migrating schema version %d -> %d: %w", v, v+1, err)
		}
	}
	return data, nil
}
