package kernel

func memset(bus Bus, dst Word, c Word, nwords int) {
	for i := 0; i < nwords; i++ {
		bus.Store32(dst+Word(i)*WordSize, c)
	}
}
