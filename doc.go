// Package sokoban solves weighted Sokoban puzzles.
//
// A warehouse is parsed into an immutable Grid (walls, targets, interior cells)
// plus the mutable parts of the puzzle: the worker, the boxes and the weight of
// each box. Solving proceeds in three stages:
//
//   - Taboo: static analysis marks cells that can never host a box in a solution.
//   - Puzzle: the state model generating legal moves and pushes, charging
//     one per move plus the weight of any pushed box.
//   - Solve: A* over the puzzle using an admissible nearest-target heuristic.
//
// CheckActions replays an action sequence under the movement rules alone and
// is meant for validating solutions produced elsewhere.
package sokoban
