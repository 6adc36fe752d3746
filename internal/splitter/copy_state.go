package splitter

// copyState tracks the single forward pass over the input. A fragment ends
// when fragmentRemaining reaches zero; the job ends when fileRemaining does.
type copyState struct {
	maxSplitSize      int64
	fragmentRemaining int64
	fileRemaining     int64
	written           int64
}

func newCopyState(size, maxSplitSize int64) *copyState {
	return &copyState{
		maxSplitSize:  maxSplitSize,
		fileRemaining: size,
	}
}

func (c *copyState) startFragment() {
	c.fragmentRemaining = min(c.maxSplitSize, c.fileRemaining)
}

// nextRead is the number of bytes to request for the next read.
func (c *copyState) nextRead(bufSize int) int {
	return int(min(int64(bufSize), c.fragmentRemaining))
}

func (c *copyState) advance(n int) {
	c.fragmentRemaining -= int64(n)
	c.fileRemaining -= int64(n)
	c.written += int64(n)
}

func (c *copyState) fragmentDone() bool {
	return c.fragmentRemaining <= 0
}

func (c *copyState) fileDone() bool {
	return c.fileRemaining <= 0
}
