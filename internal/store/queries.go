package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/quantmind-br/offsync/internal/domain"
)

const versionsTable = "manifest_versions"

var versionColumns = []string{"manifest_url", "version", "updated_at"}

func getVersionQuery(manifestURL string) (string, []any, error) {
	return sq.Select(versionColumns...).
		From(versionsTable).
		Where(sq.Eq{"manifest_url": manifestURL}).
		ToSql()
}

func listVersionsQuery() (string, []any, error) {
	return sq.Select(versionColumns...).
		From(versionsTable).
		OrderBy("manifest_url").
		ToSql()
}

// upsertVersionQuery inserts the record or replaces the version of an
// existing one
func upsertVersionQuery(rec domain.VersionRecord) (string, []any, error) {
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return sq.Insert(versionsTable).
		Columns(versionColumns...).
		Values(rec.ManifestURL, rec.Version, updatedAt.UnixMilli()).
		Suffix("ON CONFLICT(manifest_url) DO UPDATE SET version = excluded.version, updated_at = excluded.updated_at").
		ToSql()
}

func deleteVersionQuery(manifestURL string) (string, []any, error) {
	return sq.Delete(versionsTable).
		Where(sq.Eq{"manifest_url": manifestURL}).
		ToSql()
}
