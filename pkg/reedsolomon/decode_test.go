package reedsolomon

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/Davincible/meshfec/pkg/gf256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func padded(msg []byte, k int) []byte {
	out := make([]byte, k)
	copy(out, msg)
	return out
}

// corrupt XORs a nonzero value into count distinct positions.
func corrupt(rng *rand.Rand, codeword []byte, count int) ([]byte, []int) {
	out := make([]byte, len(codeword))
	copy(out, codeword)
	positions := rng.Perm(len(codeword))[:count]
	for _, p := range positions {
		out[p] ^= byte(rng.Intn(255) + 1)
	}
	return out, positions
}

func TestDecodeWithoutErrors(t *testing.T) {
	c := newDefaultCodec(t)

	codeword, err := c.Encode([]byte("HELLO"))
	require.NoError(t, err)

	res, err := c.Decode(codeword)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.NoError(t, res.Err())
	assert.Empty(t, res.Corrected)
	assert.Equal(t, padded([]byte("HELLO"), 223), res.Message)
	assert.Equal(t, []byte("HELLO"), res.Message[:5])
}

func TestDecodeSingleByteError(t *testing.T) {
	c := newDefaultCodec(t)

	codeword, err := c.Encode([]byte("HELLO"))
	require.NoError(t, err)
	codeword[10] ^= 0xFF

	res, err := c.Decode(codeword)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, []int{10}, res.Corrected)
	assert.Equal(t, padded([]byte("HELLO"), 223), res.Message)
}

func TestDecodeDoesNotModifyInput(t *testing.T) {
	c := newDefaultCodec(t)

	codeword, err := c.Encode([]byte("HELLO"))
	require.NoError(t, err)
	codeword[0] ^= 0x01
	before := append([]byte(nil), codeword...)

	_, err = c.Decode(codeword)
	require.NoError(t, err)
	assert.Equal(t, before, codeword)
}

func TestDecodeErrorPositions(t *testing.T) {
	c := newDefaultCodec(t)
	msg := []byte("position sweep")

	codeword, err := c.Encode(msg)
	require.NoError(t, err)

	// First byte, message body, padding, first and last parity byte.
	for _, pos := range []int{0, 5, 100, 222, 223, 254} {
		received := append([]byte(nil), codeword...)
		received[pos] ^= 0x5A

		res, err := c.Decode(received)
		require.NoError(t, err)
		require.True(t, res.OK, "error at %d", pos)
		assert.Equal(t, []int{pos}, res.Corrected)
		assert.Equal(t, padded(msg, 223), res.Message)
	}
}

func TestDecodeAtCapacity(t *testing.T) {
	c := newDefaultCodec(t)
	rng := rand.New(rand.NewSource(1))

	msg := make([]byte, 223)
	rng.Read(msg)
	codeword, err := c.Encode(msg)
	require.NoError(t, err)

	for trial := 0; trial < 50; trial++ {
		received, _ := corrupt(rng, codeword, c.T())

		res, err := c.Decode(received)
		require.NoError(t, err)
		require.True(t, res.OK, "trial %d", trial)
		assert.Len(t, res.Corrected, c.T())
		assert.Equal(t, msg, res.Message)
	}
}

func TestDecodeEveryErrorCountUpToCapacity(t *testing.T) {
	c := newDefaultCodec(t)
	rng := rand.New(rand.NewSource(2))

	codeword, err := c.Encode([]byte("HELLO"))
	require.NoError(t, err)

	for errs := 1; errs <= c.T(); errs++ {
		received, _ := corrupt(rng, codeword, errs)

		res, err := c.Decode(received)
		require.NoError(t, err)
		require.True(t, res.OK, "%d errors", errs)
		assert.Len(t, res.Corrected, errs)
		assert.Equal(t, padded([]byte("HELLO"), 223), res.Message)
	}
}

func TestDecodeBeyondCapacity(t *testing.T) {
	c := newDefaultCodec(t)
	rng := rand.New(rand.NewSource(3))

	codeword, err := c.Encode([]byte("HELLO"))
	require.NoError(t, err)

	const trials = 100
	failures := 0
	for trial := 0; trial < trials; trial++ {
		received, _ := corrupt(rng, codeword, c.T()+1)

		res, err := c.Decode(received)
		require.NoError(t, err)
		if !res.OK {
			failures++
			assert.ErrorIs(t, res.Err(), ErrUncorrectable)
			assert.Equal(t, received[:223], res.Message, "failed decode returns the received bytes")
		}
	}

	// Some t+1 patterns land within distance t of another codeword, so
	// this is a majority, not a certainty.
	assert.GreaterOrEqual(t, failures, trials*9/10)
}

func TestDecodeInvalidLength(t *testing.T) {
	c := newDefaultCodec(t)

	for _, size := range []int{0, 254, 256} {
		_, err := c.Decode(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidCodewordLength)
	}
}

func TestShortenedCode(t *testing.T) {
	c, err := New(Config{N: 40, K: 20, PrimitivePoly: gf256.DefaultPolynomial})
	require.NoError(t, err)
	require.Equal(t, 10, c.T())

	rng := rand.New(rand.NewSource(4))
	msg := []byte("short radio frame!")
	codeword, err := c.Encode(msg)
	require.NoError(t, err)

	for trial := 0; trial < 30; trial++ {
		received, _ := corrupt(rng, codeword, 1+trial%c.T())

		res, err := c.Decode(received)
		require.NoError(t, err)
		require.True(t, res.OK, "trial %d", trial)
		assert.Equal(t, padded(msg, 20), res.Message)
	}
}

func TestAlternatePrimitivePolynomial(t *testing.T) {
	c, err := New(Config{N: 255, K: 223, PrimitivePoly: 0x187})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	codeword, err := c.Encode([]byte("different field"))
	require.NoError(t, err)

	received, _ := corrupt(rng, codeword, c.T())
	res, err := c.Decode(received)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, padded([]byte("different field"), 223), res.Message)
}

func TestBerlekampMasseySingleError(t *testing.T) {
	c := newDefaultCodec(t)
	f := c.Field()

	codeword, err := c.Encode([]byte("HELLO"))
	require.NoError(t, err)
	codeword[10] ^= 0x42

	synd := c.syndromes(codeword)
	locator, degree := c.berlekampMassey(synd)

	// One error at byte 10 has locator X = α^(n-1-10); Λ(x) = 1 + X·x.
	require.Equal(t, 1, degree)
	assert.Equal(t, byte(1), locator[0])
	assert.Equal(t, f.Exp(255-1-10), locator[1])
	assert.Equal(t, []int{10}, c.chienSearch(locator))
	assert.Equal(t, []byte{0x42}, c.forney(synd, locator, []int{10}))
}

func TestConcurrentUse(t *testing.T) {
	c := newDefaultCodec(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			msg := make([]byte, 100)
			rng.Read(msg)
			codeword, err := c.Encode(msg)
			if !assert.NoError(t, err) {
				return
			}

			for i := 0; i < 20; i++ {
				received, _ := corrupt(rng, codeword, 1+rng.Intn(c.T()))
				res, err := c.Decode(received)
				if assert.NoError(t, err) && assert.True(t, res.OK) {
					assert.Equal(t, padded(msg, 223), res.Message)
				}
			}
		}(int64(g))
	}
	wg.Wait()
}

func TestDecodeArbitraryInput(t *testing.T) {
	configs := []Config{
		{N: 255, K: 223},
		{N: 40, K: 20},
		{N: 16, K: 8},
		{N: 3, K: 1},
		{N: 8, K: 8},
	}

	for _, cfg := range configs {
		cfg.PrimitivePoly = gf256.DefaultPolynomial
		c, err := New(cfg)
		require.NoError(t, err)

		rng := rand.New(rand.NewSource(int64(cfg.N*1000 + cfg.K)))
		for trial := 0; trial < 300; trial++ {
			received := make([]byte, cfg.N)
			rng.Read(received)

			var res Result
			assert.NotPanics(t, func() {
				res, err = c.Decode(received)
			}, "RS(%d,%d) trial %d", cfg.N, cfg.K, trial)
			require.NoError(t, err)
			require.Len(t, res.Message, cfg.K)

			if !res.OK {
				assert.Equal(t, received[:cfg.K], res.Message, "failed decode returns the received message")
				continue
			}

			// The repaired word is the codeword of the returned message and
			// differs from the input exactly at the reported positions.
			assert.LessOrEqual(t, len(res.Corrected), c.T())
			codeword, err := c.Encode(res.Message)
			require.NoError(t, err)

			var diff []int
			for i := range codeword {
				if codeword[i] != received[i] {
					diff = append(diff, i)
				}
			}
			assert.ElementsMatch(t, diff, res.Corrected, "RS(%d,%d) trial %d", cfg.N, cfg.K, trial)
		}
	}
}
