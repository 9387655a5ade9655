package rhythm

// SchedulePass dispatches every note due before now+horizon and advances the sequencer past it. At most limit notes
// are dispatched; whatever is left of a longer backlog waits for the next pass. It returns the number of notes
// dispatched.
func SchedulePass(seq *Sequencer, now, horizon float64, limit int, dispatch func(ScheduledNote)) int {
	count := 0
	for seq.NextNoteTime() < now+horizon && count < limit {
		dispatch(seq.Next())
		seq.Advance()
		count++
	}
	return count
}
