package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - rules and nodes tables
const currentSchemaVersion = 1

// orderBy maps each sort key to a fixed ORDER BY clause.
var orderBy = map[domain.SortKey]string{
	domain.SortBySortOrder:  "sort_order, id",
	domain.SortByID:         "id",
	domain.SortByName:       "name, id",
	domain.SortByCodeLength: "length(code) DESC, id",
}

const nodeColumns = `id, rule_id, parent_id, name, node_type, segment_length,
	code, value_regex, value_placeholder, sort_order, description`

// Store implements ports.RuleStore on SQLite.
type Store struct {
	db *sql.DB
}

var _ ports.RuleStore = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// CreateRule inserts a rule.
func (s *Store) CreateRule(ctx context.Context, rule domain.Rule) (domain.Rule, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rules (name, total_length, is_active) VALUES (?, ?, ?)`,
		rule.Name, rule.TotalLength, rule.Active)
	if err != nil {
		return domain.Rule{}, fmt.Errorf("insert rule: %w", err)
	}
	if rule.ID, err = res.LastInsertId(); err != nil {
		return domain.Rule{}, fmt.Errorf("insert rule: %w", err)
	}
	return rule, nil
}

// GetRule loads one rule.
func (s *Store) GetRule(ctx context.Context, id int64) (domain.Rule, error) {
	var r domain.Rule
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, total_length, is_active FROM rules WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.TotalLength, &r.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Rule{}, fmt.Errorf("%w: %d", domain.ErrRuleNotFound, id)
	}
	if err != nil {
		return domain.Rule{}, fmt.Errorf("query rule: %w", err)
	}
	return r, nil
}

// ListRules returns every rule in id order.
func (s *Store) ListRules(ctx context.Context) ([]domain.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, total_length, is_active FROM rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		var r domain.Rule
		if err := rows.Scan(&r.ID, &r.Name, &r.TotalLength, &r.Active); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// CreateNode inserts a node after checking its rule and parent exist.
func (s *Store) CreateNode(ctx context.Context, node domain.Node) (domain.Node, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Node{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	ok, err := exists(ctx, tx, `SELECT 1 FROM rules WHERE id = ?`, node.RuleID)
	if err != nil {
		return domain.Node{}, err
	}
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %d", domain.ErrRuleNotFound, node.RuleID)
	}
	var parent sql.NullInt64
	if node.ParentID != nil {
		ok, err := exists(ctx, tx, `SELECT 1 FROM nodes WHERE id = ?`, *node.ParentID)
		if err != nil {
			return domain.Node{}, err
		}
		if !ok {
			return domain.Node{}, fmt.Errorf("parent %w: %d", domain.ErrNodeNotFound, *node.ParentID)
		}
		parent = sql.NullInt64{Int64: *node.ParentID, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO nodes (rule_id, parent_id, name, node_type, segment_length,
			code, value_regex, value_placeholder, sort_order, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.RuleID, parent, node.Name, string(node.Type), node.SegmentLength,
		node.Code, node.ValueRegex, node.ValuePlaceholder, node.SortOrder, node.Description)
	if err != nil {
		return domain.Node{}, fmt.Errorf("insert node: %w", err)
	}
	if node.ID, err = res.LastInsertId(); err != nil {
		return domain.Node{}, fmt.Errorf("insert node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Node{}, fmt.Errorf("commit: %w", err)
	}
	return node, nil
}

// GetNode loads one node.
func (s *Store) GetNode(ctx context.Context, id int64) (domain.Node, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Node{}, fmt.Errorf("%w: %d", domain.ErrNodeNotFound, id)
	}
	if err != nil {
		return domain.Node{}, fmt.Errorf("query node: %w", err)
	}
	return n, nil
}

// HasChildren reports whether any node names id as parent.
func (s *Store) HasChildren(ctx context.Context, id int64) (bool, error) {
	var has bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM nodes WHERE parent_id = ?)`, id).Scan(&has)
	if err != nil {
		return false, fmt.Errorf("query children: %w", err)
	}
	return has, nil
}

// ListNodes returns one level of one rule's tree.
func (s *Store) ListNodes(ctx context.Context, ruleID int64, parentID *int64, key domain.SortKey) ([]domain.Node, error) {
	order, ok := orderBy[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidInput, key)
	}
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE rule_id = ? AND parent_id IS NULL ORDER BY ` + order
	args := []any{ruleID}
	if parentID != nil {
		query = `SELECT ` + nodeColumns + ` FROM nodes WHERE rule_id = ? AND parent_id = ? ORDER BY ` + order
		args = append(args, *parentID)
	}
	return s.queryNodes(ctx, query, args...)
}

// DeleteNode removes a node. The parent_id foreign key rejects the delete
// while children remain.
func (s *Store) DeleteNode(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return fmt.Errorf("%w: %d", domain.ErrNodeHasChildren, id)
		}
		return fmt.Errorf("delete node: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", domain.ErrNodeNotFound, id)
	}
	return nil
}

// Snapshot returns every node in id order.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Node, error) {
	return s.queryNodes(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY id`)
}

func (s *Store) queryNodes(ctx context.Context, query string, args ...any) ([]domain.Node, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (domain.Node, error) {
	var (
		n        domain.Node
		parent   sql.NullInt64
		nodeType string
	)
	err := row.Scan(&n.ID, &n.RuleID, &parent, &n.Name, &nodeType, &n.SegmentLength,
		&n.Code, &n.ValueRegex, &n.ValuePlaceholder, &n.SortOrder, &n.Description)
	if err != nil {
		return domain.Node{}, err
	}
	n.Type = domain.NodeType(nodeType)
	if parent.Valid {
		n.ParentID = domain.ParentRef(parent.Int64)
	}
	return n, nil
}

func exists(ctx context.Context, tx *sql.Tx, query string, arg any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup: %w", err)
	}
	return true, nil
}
