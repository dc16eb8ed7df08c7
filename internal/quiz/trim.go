package quiz

import (
	"math/rand/v2"
	"strconv"
)

// FairTrim caps the combined size of per-document lists at quota. While
// over quota it removes one question at a random position from the largest
// list; among equally large lists the earliest wins. A list is never
// shrunk below one question, so when more documents contributed than quota
// allows the result stays above quota. The input lists are not modified.
func FairTrim(lists [][]Question, quota int, rng *rand.Rand) [][]Question {
	out := make([][]Question, len(lists))
	total := 0
	for i, l := range lists {
		out[i] = append([]Question(nil), l...)
		total += len(l)
	}

	for total > quota {
		largest := 0
		for i := range out {
			if len(out[i]) > len(out[largest]) {
				largest = i
			}
		}
		n := len(out[largest])
		if n <= 1 {
			break
		}
		k := rng.IntN(n)
		out[largest] = append(out[largest][:k], out[largest][k+1:]...)
		total--
	}
	return out
}

// Flatten concatenates lists in order.
func Flatten(lists [][]Question) []Question {
	var out []Question
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// AssignIDs gives every question without an id, or with an id already
// used earlier in the list, the id "q_<index>". Ids are unique afterwards.
func AssignIDs(questions []Question) {
	seen := make(map[string]bool, len(questions))
	for i := range questions {
		id := questions[i].ID
		if id == "" || seen[id] {
			id = PositionalID(i)
			for n := 1; seen[id]; n++ {
				id = PositionalID(i) + "_" + strconv.Itoa(n)
			}
		}
		seen[id] = true
		questions[i].ID = id
	}
}

// PositionalID is the fallback id of the question at index i.
func PositionalID(i int) string {
	return "q_" + strconv.Itoa(i)
}
