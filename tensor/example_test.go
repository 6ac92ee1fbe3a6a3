package tensor_test

import (
	"fmt"

	"github.com/katalvlaran/alscpd/tensor"
	"gonum.org/v1/gonum/mat"
)

// ExampleContractExcept contracts a 2×3 array against the axis-1 factor,
// leaving axis 0 free.
func ExampleContractExcept() {
	v, _ := tensor.New([]int{2, 3}, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	factors := []*mat.Dense{
		mat.NewDense(1, 2, []float64{1, 0}), // unused: axis 0 stays free
		mat.NewDense(1, 3, []float64{1, 1, 1}),
	}
	b, _ := tensor.ContractExcept(v, factors, 0)
	fmt.Println(b.RawRowView(0))
	// Output:
	// [6 15]
}
