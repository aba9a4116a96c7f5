package activity

import "sort"

// Less orders activities newest first, ties broken by id descending.
func Less(a, b Activity) bool {
	if a.ActivityTimestamp() != b.ActivityTimestamp() {
		return a.ActivityTimestamp() > b.ActivityTimestamp()
	}
	return a.ActivityID() > b.ActivityID()
}

// SortActivities sorts in place, newest first.
func SortActivities(list []Activity) {
	sort.SliceStable(list, func(i, j int) bool { return Less(list[i], list[j]) })
}

// MergeSortedActivities merges two newest-first lists into one. When both
// lists hold an activity with the same id the one from fresh wins.
func MergeSortedActivities(current, fresh []Activity) []Activity {
	fresh = append([]Activity(nil), fresh...)
	SortActivities(fresh)

	replaced := make(map[string]struct{}, len(fresh))
	for _, a := range fresh {
		replaced[a.ActivityID()] = struct{}{}
	}
	kept := make([]Activity, 0, len(current))
	for _, a := range current {
		if _, ok := replaced[a.ActivityID()]; !ok {
			kept = append(kept, a)
		}
	}

	result := make([]Activity, 0, len(kept)+len(fresh))
	i, j := 0, 0
	for i < len(kept) && j < len(fresh) {
		if Less(fresh[j], kept[i]) {
			result = append(result, fresh[j])
			j++
		} else {
			result = append(result, kept[i])
			i++
		}
	}
	result = append(result, kept[i:]...)
	result = append(result, fresh[j:]...)
	return result
}
