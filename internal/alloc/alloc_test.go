package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateFreeBalances(t *testing.T) {
	var fatalErr error
	a := New(func(err error) { fatalErr = err })
	a.Register(HandleBinArray, 64)

	s := Allocate[int](a, HandleBinArray, 10)
	require.Len(t, s, 10)

	usage := a.Usage(HandleBinArray)
	assert.Equal(t, int64(10), usage.Reused)
	assert.Equal(t, int64(10), usage.InUse)
	assert.Equal(t, int64(10), usage.MaxUsage)

	Free(a, HandleBinArray, s)
	usage = a.Usage(HandleBinArray)
	assert.Equal(t, int64(10), usage.Recycled)
	assert.Equal(t, int64(0), usage.InUse)

	assert.Nil(t, fatalErr)
}

func TestMaxUsageTracksPeak(t *testing.T) {
	a := New(func(error) {})
	a.Register(HandleTable, 1)

	s1 := Allocate[byte](a, HandleTable, 5)
	s2 := Allocate[byte](a, HandleTable, 3)
	Free(a, HandleTable, s1)

	usage := a.Usage(HandleTable)
	assert.Equal(t, int64(8), usage.MaxUsage)
	assert.Equal(t, int64(3), usage.InUse)

	Free(a, HandleTable, s2)
}

// fatalPanic is the sentinel runFatal's mocked osExit raises, so a
// simulated process exit actually stops execution mid-function the
// way the real os.Exit would, instead of letting a fatal code path
// fall through into a nil-pointer dereference.
type fatalPanic struct{}

func runFatal(t *testing.T, fn func(a *Allocator)) (caught error) {
	t.Helper()
	old := osExit
	osExit = func(int) { panic(fatalPanic{}) }
	defer func() {
		osExit = old
		if r := recover(); r != nil {
			if _, ok := r.(fatalPanic); !ok {
				panic(r)
			}
		}
	}()

	a := New(func(err error) { caught = err })
	fn(a)
	return caught
}

func TestUnregisteredHandleIsFatal(t *testing.T) {
	err := runFatal(t, func(a *Allocator) {
		_ = Allocate[int](a, HandleIterator, 1)
	})
	require.Error(t, err)
}

func TestLeakCheckIsFatal(t *testing.T) {
	err := runFatal(t, func(a *Allocator) {
		a.Register(HandleBinArray, 8)
		_ = Allocate[int](a, HandleBinArray, 4)
		a.Close()
	})
	require.Error(t, err)
}

func TestDoubleRegisterIsFatal(t *testing.T) {
	err := runFatal(t, func(a *Allocator) {
		a.Register(HandleTable, 1)
		a.Register(HandleTable, 1)
	})
	require.Error(t, err)
}
