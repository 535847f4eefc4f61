package twine

import "runtime"

func numCPU() int { return runtime.NumCPU() }
