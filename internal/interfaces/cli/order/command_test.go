package order

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rolegate/rolegate/internal/application/order/usecases"
)

func TestPrintFulfillment(t *testing.T) {
	var buf bytes.Buffer
	printFulfillment(&buf, &usecases.FulfillOrderResult{OrderID: "O1", AlreadyPaid: true})
	assert.Equal(t, "Order O1 was already paid, nothing to do\n", buf.String())

	buf.Reset()
	printFulfillment(&buf, nil)
	assert.Empty(t, buf.String())
}
