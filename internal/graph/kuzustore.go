//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path. KuzuDB creates the leaf directory itself for new databases, so
// an index written by "archcheck index" can be reopened later.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		name STRING,
		language STRING,
		loc INT64,
		size INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Package(
		id STRING,
		name STRING,
		type STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS IMPORTS(FROM File TO File, via STRING)`,
	`CREATE REL TABLE IF NOT EXISTS USES(FROM File TO Package, via STRING)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddFile inserts or updates a File node.
func (s *KuzuStore) AddFile(_ context.Context, file File) error {
	return s.exec(
		`MERGE (f:File {path: $path})
		 SET f.name = $name, f.language = $lang, f.loc = $loc, f.size = $size`,
		map[string]any{
			"path": file.Path,
			"name": file.Name,
			"lang": string(file.Language),
			"loc":  int64(file.LOC),
			"size": file.Size,
		},
	)
}

// AddDependency records one dependency of the file at from. ValidPath
// dependencies become IMPORTS edges between File nodes; everything else
// becomes a USES edge to a Package node keyed by type and name.
func (s *KuzuStore) AddDependency(_ context.Context, from string, dep Dependency) error {
	if dep.Type == DependencyValidPath {
		return s.exec(
			`MATCH (a:File {path: $src}), (b:File {path: $dst})
			 CREATE (a)-[:IMPORTS {via: $via}]->(b)`,
			map[string]any{"src": from, "dst": dep.Name, "via": string(dep.ResolvedVia)},
		)
	}
	id := packageID(dep)
	if err := s.exec(
		"MERGE (p:Package {id: $id}) SET p.name = $name, p.type = $type",
		map[string]any{"id": id, "name": dep.Name, "type": string(dep.Type)},
	); err != nil {
		return err
	}
	return s.exec(
		`MATCH (a:File {path: $src}), (p:Package {id: $id})
		 CREATE (a)-[:USES {via: $via}]->(p)`,
		map[string]any{"src": from, "id": id, "via": string(dep.ResolvedVia)},
	)
}

// ---------- Read operations ----------

// GetFile retrieves a single File node with its dependencies, or returns nil
// if not found.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*File, error) {
	rows, err := s.query(
		"MATCH (f:File {path: $path}) RETURN f.path, f.name, f.language, f.loc, f.size",
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	f := &File{
		Path:     toString(r[0]),
		Name:     toString(r[1]),
		Language: Language(toString(r[2])),
		LOC:      toInt(r[3]),
		Size:     int64(toInt(r[4])),
	}

	imports, err := s.query(
		"MATCH (a:File {path: $path})-[e:IMPORTS]->(b:File) RETURN b.path, e.via",
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	for _, r := range imports {
		f.Dependencies = append(f.Dependencies, Dependency{
			Name:        toString(r[0]),
			Type:        DependencyValidPath,
			ResolvedVia: Mechanism(toString(r[1])),
		})
	}

	uses, err := s.query(
		"MATCH (a:File {path: $path})-[e:USES]->(p:Package) RETURN p.name, p.type, e.via",
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	for _, r := range uses {
		f.Dependencies = append(f.Dependencies, Dependency{
			Name:        toString(r[0]),
			Type:        DependencyType(toString(r[1])),
			ResolvedVia: Mechanism(toString(r[2])),
		})
	}
	return f, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over IMPORTS edges starting from the given
// file path. It returns one DependencyChain per reachable file.
func (s *KuzuStore) GetDependencies(_ context.Context, path string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state.
	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{path: true}
	queue := []bfsEntry{{path: []string{path}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.fileNeighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// fileNeighbors returns immediate file neighbors along IMPORTS edges, sorted.
func (s *KuzuStore) fileNeighbors(path string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionUpstream:
		cypher = "MATCH (a:File {path: $path})-[:IMPORTS]->(b:File) RETURN DISTINCT b.path"
	case DirectionDownstream:
		cypher = "MATCH (a:File)-[:IMPORTS]->(b:File {path: $path}) RETURN DISTINCT a.path"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	sort.Strings(out)
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of files and dependency edges by classification.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	files, err := s.count("MATCH (n:File) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	valid, err := s.count("MATCH ()-[r:IMPORTS]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	invalid, err := s.count("MATCH ()-[r:USES]->(p:Package {type: 'invalid'}) RETURN count(r)")
	if err != nil {
		return nil, err
	}
	uses, err := s.count("MATCH ()-[r:USES]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		FileCount:       files,
		DependencyCount: valid + uses,
		ValidPathCount:  valid,
		ExternalCount:   uses - invalid,
		InvalidCount:    invalid,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value counting query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// packageID keys a Package node so that, say, an invalid "./x" and a
// production "x" never collapse into one node.
func packageID(dep Dependency) string {
	return string(dep.Type) + ":" + dep.Name
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
