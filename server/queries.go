package main

const querySearchCFGs = `
SELECT id, name, block_count FROM cfgs WHERE name LIKE ? ORDER BY name LIMIT ?
`

const queryListCFGs = `
SELECT id, name, block_count FROM cfgs ORDER BY name
`

const queryBlocksByCFGName = `
SELECT b.cfg_id, b.block_id, b.size, b.ignored, b.last_instr
FROM blocks b JOIN cfgs c ON c.id = b.cfg_id
WHERE c.name = ?
ORDER BY b.block_id
`

const queryBlockInstrs = `
SELECT i.line, i.text
FROM block_instrs i JOIN cfgs c ON c.id = i.cfg_id
WHERE c.name = ? AND i.block_id = ?
ORDER BY i.line
`

const queryBlockSucc = `
SELECT e.dst_block
FROM block_edges e JOIN cfgs c ON c.id = e.cfg_id
WHERE c.name = ? AND e.src_block = ?
ORDER BY e.dst_block
`

const queryBlockPred = `
SELECT e.src_block
FROM block_edges e JOIN cfgs c ON c.id = e.cfg_id
WHERE c.name = ? AND e.dst_block = ?
ORDER BY e.src_block
`

const queryCallEdgesForCFG = `
SELECT caller_cfg, caller_block, callee_cfg FROM call_edges
WHERE caller_cfg = ? OR callee_cfg = ?
ORDER BY caller_block
`

const queryRetEdgesForCFG = `
SELECT callee_cfg, callee_block, caller_cfg, resume_block FROM ret_edges
WHERE callee_cfg = ? OR caller_cfg = ?
ORDER BY callee_block
`

const queryAllSummaries = `
SELECT cfg_name, weight, is_infinite FROM summaries ORDER BY cfg_name
`

const queryAllDistances = `
SELECT line, weight, seq FROM distances ORDER BY weight, line LIMIT ?
`

const queryBlockEdgesByCFGName = `
SELECT b.src_block, b.dst_block
FROM block_edges b JOIN cfgs c ON c.id = b.cfg_id
WHERE c.name = ?
ORDER BY b.src_block, b.dst_block
`

const queryBlockLastLine = `
SELECT MAX(i.line)
FROM block_instrs i JOIN cfgs c ON c.id = i.cfg_id
WHERE c.name = ? AND i.block_id = ?
`

const queryDistanceForLine = `
SELECT line, weight, seq FROM distances WHERE line = ? ORDER BY seq LIMIT 1
`

const queryDistanceWeightForLine = `
SELECT weight FROM distances WHERE line = ? ORDER BY seq LIMIT 1
`

const queryCallTargetFromSite = `
SELECT callee_cfg FROM call_edges WHERE caller_cfg = ? AND caller_block = ?
`

const queryRetTargetFromSite = `
SELECT caller_cfg, resume_block FROM ret_edges WHERE callee_cfg = ? AND callee_block = ?
ORDER BY caller_cfg, resume_block LIMIT 1
`

const queryRunMeta = `
SELECT run_id, cfg_count FROM run_meta LIMIT 1
`

const queryBlockCount = `
SELECT COUNT(*) FROM blocks
`

const queryDistanceCount = `
SELECT COUNT(*) FROM distances
`
