package astar

type PriorityQueueItem[StateType any, KeyType comparable] struct {
	Key          KeyType
	State        StateType
	GScore       float64
	FCost        float64
	Sequence     uint64
	IndexInQueue int
}

// PriorityQueue orders items by FCost, then by Sequence so equal priorities
// leave the queue in insertion order.
type PriorityQueue[StateType any, KeyType comparable] []*PriorityQueueItem[StateType, KeyType]

func (queue PriorityQueue[StateType, KeyType]) Len() int { return len(queue) }
func (queue PriorityQueue[StateType, KeyType]) Less(i, j int) bool {
	if queue[i].FCost != queue[j].FCost {
		return queue[i].FCost < queue[j].FCost
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue PriorityQueue[StateType, KeyType]) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue[StateType, KeyType]) Push(x any) {
	item := x.(*PriorityQueueItem[StateType, KeyType])
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue[StateType, KeyType]) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}
