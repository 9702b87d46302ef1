package main

import (
	"database/sql"

	"github.com/dustin/go-humanize"
)

func humanizeCount(n int64) string {
	return humanize.Comma(n)
}

// SearchCFGs returns CFGs whose name contains pattern.
func (db *DB) SearchCFGs(pattern string, limit int) ([]CFGSummary, error) {
	if limit <= 0 || limit > maxSearchResults {
		limit = 50
	}
	rows, err := db.Query(querySearchCFGs, "%"+pattern+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCFGSummaries(rows)
}

// ListCFGs returns every CFG in the database.
func (db *DB) ListCFGs() ([]CFGSummary, error) {
	rows, err := db.Query(queryListCFGs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCFGSummaries(rows)
}

func scanCFGSummaries(rows *sql.Rows) ([]CFGSummary, error) {
	var out []CFGSummary
	for rows.Next() {
		var c CFGSummary
		if err := rows.Scan(&c.ID, &c.Name, &c.BlockCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []CFGSummary{}
	}
	return out, nil
}

// BlocksByCFGName returns every block belonging to the named CFG.
func (db *DB) BlocksByCFGName(name string) ([]BlockSummary, error) {
	rows, err := db.Query(queryBlocksByCFGName, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BlockSummary
	for rows.Next() {
		var b BlockSummary
		var last sql.NullString
		if err := rows.Scan(&b.CFGID, &b.BlockID, &b.Size, &b.Ignored, &last); err != nil {
			return nil, err
		}
		b.LastInstr = nullStringJSON{last}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []BlockSummary{}
	}
	return out, nil
}

// BlockDetail returns the instructions and intraprocedural edges of one block.
func (db *DB) BlockDetail(cfgName string, blockID int) (*BlockDetail, error) {
	instrRows, err := db.Query(queryBlockInstrs, cfgName, blockID)
	if err != nil {
		return nil, err
	}
	defer instrRows.Close()
	detail := &BlockDetail{CFGName: cfgName, BlockID: blockID}
	for instrRows.Next() {
		var i InstructionRow
		if err := instrRows.Scan(&i.Line, &i.Text); err != nil {
			return nil, err
		}
		detail.Instrs = append(detail.Instrs, i)
	}
	if err := instrRows.Err(); err != nil {
		return nil, err
	}

	succRows, err := db.Query(queryBlockSucc, cfgName, blockID)
	if err != nil {
		return nil, err
	}
	defer succRows.Close()
	for succRows.Next() {
		var id int
		if err := succRows.Scan(&id); err != nil {
			return nil, err
		}
		detail.Succ = append(detail.Succ, id)
	}
	if err := succRows.Err(); err != nil {
		return nil, err
	}

	predRows, err := db.Query(queryBlockPred, cfgName, blockID)
	if err != nil {
		return nil, err
	}
	defer predRows.Close()
	for predRows.Next() {
		var id int
		if err := predRows.Scan(&id); err != nil {
			return nil, err
		}
		detail.Pred = append(detail.Pred, id)
	}
	return detail, predRows.Err()
}

// CallGraphForCFG returns every call and return edge touching the named CFG,
// either as caller or callee.
func (db *DB) CallGraphForCFG(name string) ([]CallEdgeRow, []RetEdgeRow, error) {
	callRows, err := db.Query(queryCallEdgesForCFG, name, name)
	if err != nil {
		return nil, nil, err
	}
	defer callRows.Close()
	var calls []CallEdgeRow
	for callRows.Next() {
		var c CallEdgeRow
		if err := callRows.Scan(&c.CallerCFG, &c.CallerBlock, &c.CalleeCFG); err != nil {
			return nil, nil, err
		}
		calls = append(calls, c)
	}
	if err := callRows.Err(); err != nil {
		return nil, nil, err
	}

	retRows, err := db.Query(queryRetEdgesForCFG, name, name)
	if err != nil {
		return nil, nil, err
	}
	defer retRows.Close()
	var rets []RetEdgeRow
	for retRows.Next() {
		var r RetEdgeRow
		if err := retRows.Scan(&r.CalleeCFG, &r.CalleeBlock, &r.CallerCFG, &r.ResumeBlock); err != nil {
			return nil, nil, err
		}
		rets = append(rets, r)
	}
	return calls, rets, retRows.Err()
}

// Summaries returns every function summary, ordered by CFG name.
func (db *DB) Summaries() ([]SummaryRow, error) {
	rows, err := db.Query(queryAllSummaries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SummaryRow
	for rows.Next() {
		var s SummaryRow
		var weight sql.NullInt64
		var isInfinite int
		if err := rows.Scan(&s.CFGName, &weight, &isInfinite); err != nil {
			return nil, err
		}
		s.Weight = nullInt64JSON{weight}
		s.IsInfinite = isInfinite != 0
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []SummaryRow{}
	}
	return out, nil
}

// Distances returns the lowest-weight distance rows, capped at maxDistanceRows.
func (db *DB) Distances(limit int) ([]DistanceRow, error) {
	if limit <= 0 || limit > maxDistanceRows {
		limit = maxDistanceRows
	}
	rows, err := db.Query(queryAllDistances, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DistanceRow
	for rows.Next() {
		var d DistanceRow
		if err := rows.Scan(&d.Line, &d.Weight, &d.Seq); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []DistanceRow{}
	}
	return out, nil
}

// RunStats summarizes the run for the dashboard header.
func (db *DB) RunStats() (*Stats, error) {
	var s Stats
	var runID string
	var cfgCount int
	err := db.QueryRow(queryRunMeta).Scan(&runID, &cfgCount)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	s.RunID = runID
	s.CFGCount = cfgCount

	var blockCount int64
	if err := db.QueryRow(queryBlockCount).Scan(&blockCount); err != nil {
		return nil, err
	}
	var distCount int64
	if err := db.QueryRow(queryDistanceCount).Scan(&distCount); err != nil {
		return nil, err
	}
	s.BlockCount = humanizeCount(blockCount)
	s.DistanceCount = humanizeCount(distCount)
	return &s, nil
}

// CFGDetail returns one CFG's blocks and intraprocedural edges.
func (db *DB) CFGDetail(name string) (*CFGDetail, error) {
	blocks, err := db.BlocksByCFGName(name)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(queryBlockEdgesByCFGName, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var edges []BlockEdge
	for rows.Next() {
		var e BlockEdge
		if err := rows.Scan(&e.SrcBlock, &e.DstBlock); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if edges == nil {
		edges = []BlockEdge{}
	}
	return &CFGDetail{Name: name, Blocks: blocks, Edges: edges}, nil
}

// DistanceForLine returns the recorded distance for a source line, or nil
// if the distance pass never assigned that line a weight.
func (db *DB) DistanceForLine(line int) (*DistanceRow, error) {
	var d DistanceRow
	err := db.QueryRow(queryDistanceForLine, line).Scan(&d.Line, &d.Weight, &d.Seq)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// pathSite names a basic block by its owning CFG and block id, the same
// shape kreachdist's own call/return graph keys on.
type pathSite struct {
	cfg   string
	block int
}

// CallPath greedily traces a path from from's entry block toward the
// target, hopping to whichever reachable site (call target, return
// target, or intraprocedural successor) carries the lowest recorded
// distance. It reads only already-computed distances, call_edges, and
// ret_edges -- it never re-runs the Dijkstra search that produced them.
func (db *DB) CallPath(from string) ([]PathStep, error) {
	current := pathSite{cfg: from, block: 0}
	visited := make(map[pathSite]bool)
	var steps []PathStep

	for i := 0; i < maxPathDepth; i++ {
		if visited[current] {
			break
		}
		visited[current] = true

		step := PathStep{CFG: current.cfg, Block: current.block}
		line, hasLine, err := db.blockLastLine(current.cfg, current.block)
		if err != nil {
			return nil, err
		}
		weight := 0
		haveWeight := false
		if hasLine {
			step.Line = nullInt64JSON{sql.NullInt64{Int64: int64(line), Valid: true}}
			weight, haveWeight, err = db.distanceWeightForLine(line)
			if err != nil {
				return nil, err
			}
			if haveWeight {
				step.Weight = nullInt64JSON{sql.NullInt64{Int64: int64(weight), Valid: true}}
			}
		}
		steps = append(steps, step)

		if haveWeight && weight == 0 {
			break
		}

		next, ok, err := db.nextPathSite(current.cfg, current.block)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		current = next
	}

	if steps == nil {
		steps = []PathStep{}
	}
	return steps, nil
}

// nextPathSite picks the reachable site (call target, return target, or
// intraprocedural successor) with the lowest recorded distance, falling
// back to any candidate when none has a recorded distance yet.
func (db *DB) nextPathSite(cfg string, block int) (pathSite, bool, error) {
	type candidate struct {
		site      pathSite
		weight    int
		hasWeight bool
	}
	var candidates []candidate

	var calleeCFG string
	switch err := db.QueryRow(queryCallTargetFromSite, cfg, block).Scan(&calleeCFG); {
	case err == nil:
		w, ok, werr := db.candidateWeight(calleeCFG, 0)
		if werr != nil {
			return pathSite{}, false, werr
		}
		candidates = append(candidates, candidate{site: pathSite{calleeCFG, 0}, weight: w, hasWeight: ok})
	case err != sql.ErrNoRows:
		return pathSite{}, false, err
	}

	var callerCFG string
	var resumeBlock int
	switch err := db.QueryRow(queryRetTargetFromSite, cfg, block).Scan(&callerCFG, &resumeBlock); {
	case err == nil:
		w, ok, werr := db.candidateWeight(callerCFG, resumeBlock)
		if werr != nil {
			return pathSite{}, false, werr
		}
		candidates = append(candidates, candidate{site: pathSite{callerCFG, resumeBlock}, weight: w, hasWeight: ok})
	case err != sql.ErrNoRows:
		return pathSite{}, false, err
	}

	succRows, err := db.Query(queryBlockSucc, cfg, block)
	if err != nil {
		return pathSite{}, false, err
	}
	defer succRows.Close()
	var succs []int
	for succRows.Next() {
		var s int
		if err := succRows.Scan(&s); err != nil {
			return pathSite{}, false, err
		}
		succs = append(succs, s)
	}
	if err := succRows.Err(); err != nil {
		return pathSite{}, false, err
	}
	_ = succRows.Close()
	for _, s := range succs {
		w, ok, werr := db.candidateWeight(cfg, s)
		if werr != nil {
			return pathSite{}, false, werr
		}
		candidates = append(candidates, candidate{site: pathSite{cfg, s}, weight: w, hasWeight: ok})
	}

	if len(candidates) == 0 {
		return pathSite{}, false, nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.hasWeight && (!best.hasWeight || c.weight < best.weight) {
			best = c
		}
	}
	return best.site, true, nil
}

func (db *DB) candidateWeight(cfg string, block int) (int, bool, error) {
	line, hasLine, err := db.blockLastLine(cfg, block)
	if err != nil || !hasLine {
		return 0, false, err
	}
	return db.distanceWeightForLine(line)
}

func (db *DB) blockLastLine(cfg string, block int) (int, bool, error) {
	var line sql.NullInt64
	if err := db.QueryRow(queryBlockLastLine, cfg, block).Scan(&line); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	if !line.Valid {
		return 0, false, nil
	}
	return int(line.Int64), true, nil
}

func (db *DB) distanceWeightForLine(line int) (int, bool, error) {
	var w int
	err := db.QueryRow(queryDistanceWeightForLine, line).Scan(&w)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return w, true, nil
}
