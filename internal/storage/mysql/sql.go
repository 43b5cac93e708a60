package mysql

import (
	"fmt"
	"regexp"
)

// Records live as JSON documents keyed by an auto-increment id, so every
// table shares one shape and new wire fields need no migration.
const createTableSQL = "CREATE TABLE IF NOT EXISTS `%s` (" +
	"  id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY," +
	"  doc JSON NOT NULL," +
	"  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP," +
	"  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

const (
	selectDocsSQL = "SELECT id, doc FROM `%s`"
	selectDocSQL  = "SELECT doc FROM `%s` WHERE id = ?"
	existsSQL     = "SELECT 1 FROM `%s` WHERE id = ?"
	insertDocSQL  = "INSERT INTO `%s` (doc) VALUES (CAST(? AS JSON))"
	mergeDocSQL   = "UPDATE `%s` SET doc = JSON_MERGE_PATCH(doc, CAST(? AS JSON)) WHERE id = ?"
	deleteByIDSQL = "DELETE FROM `%s` WHERE id = ?"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ident rejects anything that is not a plain identifier; table and field
// names reach SQL text directly and must never carry user input.
func ident(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("mysql: invalid identifier %q", name)
	}
	return name, nil
}

// docField addresses a wire field inside the JSON document. The unquoted
// form yields text (for equality and LIKE); the raw form keeps the JSON
// type so comparisons and ordering stay type-aware.
func docField(name string) (unquoted, raw string, err error) {
	f, err := ident(name)
	if err != nil {
		return "", "", err
	}
	raw = fmt.Sprintf("JSON_EXTRACT(doc, '$.%s')", f)
	unquoted = fmt.Sprintf("JSON_UNQUOTE(%s)", raw)
	return unquoted, raw, nil
}
