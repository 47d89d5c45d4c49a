package migrations

import (
	"git.agora.community/agora/agora/src/migration/types"
)

var All = make(map[types.MigrationVersion]types.Migration)

func registerMigration(m types.Migration) {
	All[m.Version()] = m
}

// LatestVersion returns the version of the newest registered migration.
func LatestVersion() types.MigrationVersion {
	var latest types.MigrationVersion
	for version := range All {
		if latest.Before(version) {
			latest = version
		}
	}
	return latest
}
