package plugin_test

import (
	"fmt"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/param"
	"github.com/cwbudde/algo-polezero/plugin"
)

func ExampleProcessor() {
	store := param.NewStore()
	_ = store.Set(param.PoleReal(0), 0.9)
	_ = store.SetBool(param.PoleActive(0), true)
	_ = store.Set(param.Gain, -20)

	p, err := plugin.New[float32](store)
	if err != nil {
		panic(err)
	}

	if err := p.Prepare(48000, 256, 2); err != nil {
		panic(err)
	}

	block := core.Planar[float32](2, 256)
	if err := p.ProcessBlock(block); err != nil {
		panic(err)
	}

	c := p.Committed()[0]
	fmt.Printf("b0=%.1f a1=%.1f latency=%d\n", c.B0, c.A1, p.Latency())
	// Output: b0=0.1 a1=-0.9 latency=95
}
