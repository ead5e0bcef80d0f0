package internal

// Edge records the predecessor of a node and the action that reached it.
type Edge[KeyType comparable, ActionType any] struct {
	From   KeyType
	Action ActionType
}

// ReconstructPath rebuilds the action sequence from the cameFrom map,
// ordered from start to current.
func ReconstructPath[KeyType comparable, ActionType any](
	cameFrom map[KeyType]Edge[KeyType, ActionType],
	current KeyType,
	start KeyType,
) []ActionType {
	var actions []ActionType
	for current != start {
		edge, exists := cameFrom[current]
		if !exists {
			break
		}
		actions = append(actions, edge.Action)
		current = edge.From
	}
	// reverse path
	for i, j := 0, len(actions)-1; i < j; i, j = i+1, j-1 {
		actions[i], actions[j] = actions[j], actions[i]
	}

	return actions
}
