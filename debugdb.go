package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// WriteDebugDB writes a SQLite database capturing every CFG, its blocks and
// edges, the call/return graph, the computed summaries, and the final
// distances -- a sidecar for inspecting a run without re-parsing the LLVM
// file by hand.
func WriteDebugDB(path, sourceFile string, program *Program, graph *CallGraph, summaries map[string]int, dist *Distances, prog *Progress) error {
	prog.Log("writing debug database to %s", path)

	_ = os.Remove(path)

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	for _, pragma := range []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA mmap_size = 268435456",
		"PRAGMA cache_size = -64000",
		"PRAGMA journal_mode = WAL",
	} {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := createDebugTables(conn); err != nil {
		return err
	}

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	tgtLine, hasTarget := targetLine(program)
	if err := insertRunMeta(conn, program, sourceFile, tgtLine, hasTarget); err != nil {
		endFn(&err)
		return err
	}
	if err := insertCFGs(conn, program); err != nil {
		endFn(&err)
		return err
	}
	if err := insertBlocksAndInstrs(conn, program); err != nil {
		endFn(&err)
		return err
	}
	if err := insertBlockEdges(conn, program); err != nil {
		endFn(&err)
		return err
	}
	if err := insertCallRetEdges(conn, graph); err != nil {
		endFn(&err)
		return err
	}
	if err := insertSummaries(conn, summaries); err != nil {
		endFn(&err)
		return err
	}
	if err := insertDistances(conn, dist); err != nil {
		endFn(&err)
		return err
	}

	endFn(&err)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	prog.Log("debug database written")
	return nil
}

func createDebugTables(conn *sqlite.Conn) error {
	ddl := `
CREATE TABLE run_meta (
    run_id TEXT PRIMARY KEY,
    cfg_count INTEGER NOT NULL,
    source_file TEXT NOT NULL,
    created_at TEXT NOT NULL,
    target_line INTEGER,
    git_commit TEXT
);

CREATE TABLE cfgs (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    defined INTEGER NOT NULL,
    block_count INTEGER NOT NULL
);

CREATE TABLE blocks (
    cfg_id INTEGER NOT NULL,
    block_id INTEGER NOT NULL,
    size INTEGER NOT NULL,
    ignored INTEGER NOT NULL,
    last_instr TEXT,
    PRIMARY KEY (cfg_id, block_id)
);

CREATE TABLE block_instrs (
    cfg_id INTEGER NOT NULL,
    block_id INTEGER NOT NULL,
    line INTEGER NOT NULL,
    text TEXT NOT NULL
);

CREATE TABLE block_edges (
    cfg_id INTEGER NOT NULL,
    src_block INTEGER NOT NULL,
    dst_block INTEGER NOT NULL
);

CREATE TABLE call_edges (
    caller_cfg TEXT NOT NULL,
    caller_block INTEGER NOT NULL,
    callee_cfg TEXT NOT NULL
);

CREATE TABLE ret_edges (
    callee_cfg TEXT NOT NULL,
    callee_block INTEGER NOT NULL,
    caller_cfg TEXT NOT NULL,
    resume_block INTEGER NOT NULL
);

CREATE TABLE summaries (
    cfg_name TEXT PRIMARY KEY,
    weight INTEGER,
    is_infinite INTEGER NOT NULL
);

CREATE TABLE distances (
    line INTEGER NOT NULL,
    weight INTEGER NOT NULL,
    seq INTEGER NOT NULL
);
`
	return sqlitex.ExecuteScript(conn, ddl, nil)
}

func insertRunMeta(conn *sqlite.Conn, program *Program, sourceFile string, targetLine int, hasTarget bool) error {
	stmt, err := conn.Prepare(`INSERT INTO run_meta (run_id, cfg_count, source_file, created_at, target_line, git_commit) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare run_meta insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	stmt.BindText(1, uuid.NewString())
	stmt.BindInt64(2, int64(len(program.CFGs)))
	stmt.BindText(3, sourceFile)
	stmt.BindText(4, time.Now().UTC().Format(time.RFC3339))
	if hasTarget {
		stmt.BindInt64(5, int64(targetLine))
	} else {
		stmt.BindNull(5)
	}
	bindTextOrNull(stmt, 6, CurrentGitCommit(sourceFile))
	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("insert run_meta: %w", err)
	}
	return nil
}

// targetLine returns the source line of the first call to klee_reach(), if
// any, for recording in run_meta.
func targetLine(program *Program) (int, bool) {
	cfgName, blockID := findTarget(program)
	if cfgName == "" {
		return 0, false
	}
	bb := program.CFGByName(cfgName).Block(blockID)
	if len(bb.Instrs) == 0 {
		return 0, false
	}
	return bb.Instrs[len(bb.Instrs)-1].Line, true
}

func insertCFGs(conn *sqlite.Conn, program *Program) error {
	stmt, err := conn.Prepare(`INSERT INTO cfgs (id, name, defined, block_count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cfgs insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, cfg := range program.CFGs {
		stmt.BindInt64(1, int64(cfg.ID))
		stmt.BindText(2, cfg.Name)
		if program.Defined[cfg.Name] {
			stmt.BindInt64(3, 1)
		} else {
			stmt.BindInt64(3, 0)
		}
		stmt.BindInt64(4, int64(len(cfg.Blocks)))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert cfg %s: %w", cfg.Name, err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func insertBlocksAndInstrs(conn *sqlite.Conn, program *Program) error {
	blockStmt, err := conn.Prepare(`INSERT INTO blocks (cfg_id, block_id, size, ignored, last_instr) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare blocks insert: %w", err)
	}
	defer func() { _ = blockStmt.Finalize() }()

	instrStmt, err := conn.Prepare(`INSERT INTO block_instrs (cfg_id, block_id, line, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare block_instrs insert: %w", err)
	}
	defer func() { _ = instrStmt.Finalize() }()

	for _, cfg := range program.CFGs {
		for _, bb := range cfg.Blocks {
			blockStmt.BindInt64(1, int64(cfg.ID))
			blockStmt.BindInt64(2, int64(bb.ID))
			blockStmt.BindInt64(3, int64(bb.Size()))
			blockStmt.BindInt64(4, int64(bb.Ignored))
			bindTextOrNull(blockStmt, 5, bb.Last())
			if _, err := blockStmt.Step(); err != nil {
				return fmt.Errorf("insert block %s#%d: %w", cfg.Name, bb.ID, err)
			}
			_ = blockStmt.Reset()

			for _, instr := range bb.Instrs {
				instrStmt.BindInt64(1, int64(cfg.ID))
				instrStmt.BindInt64(2, int64(bb.ID))
				instrStmt.BindInt64(3, int64(instr.Line))
				instrStmt.BindText(4, instr.Text)
				if _, err := instrStmt.Step(); err != nil {
					return fmt.Errorf("insert instr %s#%d:%d: %w", cfg.Name, bb.ID, instr.Line, err)
				}
				_ = instrStmt.Reset()
			}
		}
	}
	return nil
}

func insertBlockEdges(conn *sqlite.Conn, program *Program) error {
	stmt, err := conn.Prepare(`INSERT INTO block_edges (cfg_id, src_block, dst_block) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare block_edges insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, cfg := range program.CFGs {
		for _, bb := range cfg.Blocks {
			for _, succ := range bb.Succ {
				stmt.BindInt64(1, int64(cfg.ID))
				stmt.BindInt64(2, int64(bb.ID))
				stmt.BindInt64(3, int64(succ))
				if _, err := stmt.Step(); err != nil {
					return fmt.Errorf("insert block edge %s#%d->%d: %w", cfg.Name, bb.ID, succ, err)
				}
				_ = stmt.Reset()
			}
		}
	}
	return nil
}

func insertCallRetEdges(conn *sqlite.Conn, graph *CallGraph) error {
	callStmt, err := conn.Prepare(`INSERT INTO call_edges (caller_cfg, caller_block, callee_cfg) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare call_edges insert: %w", err)
	}
	defer func() { _ = callStmt.Finalize() }()

	for callSite, entry := range graph.Call {
		callStmt.BindText(1, callSite.CFG)
		callStmt.BindInt64(2, int64(callSite.Block))
		callStmt.BindText(3, entry.CFG)
		if _, err := callStmt.Step(); err != nil {
			return fmt.Errorf("insert call edge: %w", err)
		}
		_ = callStmt.Reset()
	}

	retStmt, err := conn.Prepare(`INSERT INTO ret_edges (callee_cfg, callee_block, caller_cfg, resume_block) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ret_edges insert: %w", err)
	}
	defer func() { _ = retStmt.Finalize() }()

	for key, resumes := range graph.Ret {
		for _, resume := range resumes {
			retStmt.BindText(1, key.CFG)
			retStmt.BindInt64(2, int64(key.Block))
			retStmt.BindText(3, resume.CFG)
			retStmt.BindInt64(4, int64(resume.Block))
			if _, err := retStmt.Step(); err != nil {
				return fmt.Errorf("insert ret edge: %w", err)
			}
			_ = retStmt.Reset()
		}
	}
	return nil
}

func insertSummaries(conn *sqlite.Conn, summaries map[string]int) error {
	stmt, err := conn.Prepare(`INSERT INTO summaries (cfg_name, weight, is_infinite) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare summaries insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for name, weight := range summaries {
		stmt.BindText(1, name)
		if weight >= infinite {
			stmt.BindNull(2)
			stmt.BindInt64(3, 1)
		} else {
			stmt.BindInt64(2, int64(weight))
			stmt.BindInt64(3, 0)
		}
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert summary %s: %w", name, err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func insertDistances(conn *sqlite.Conn, dist *Distances) error {
	stmt, err := conn.Prepare(`INSERT INTO distances (line, weight, seq) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare distances insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for i, e := range dist.entries {
		stmt.BindInt64(1, int64(e.Line))
		stmt.BindInt64(2, int64(e.Weight))
		stmt.BindInt64(3, int64(i))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert distance: %w", err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func bindTextOrNull(stmt *sqlite.Stmt, param int, val string) {
	if val == "" {
		stmt.BindNull(param)
	} else {
		stmt.BindText(param, val)
	}
}
