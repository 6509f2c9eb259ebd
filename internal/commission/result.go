package commission

// UpstreamResult is what the transaction step that ran before attribution
// produced. It is one of Purchase, Consumption or Sale; nil means the upstream
// step produced nothing usable.
type UpstreamResult interface {
	upstreamResult()
}

// Purchase is a single entity bought in the upstream step.
type Purchase struct {
	ItemID  string
	Payload any // forwarded unchanged as the 201 body
}

// Consumption lists the transaction-log rows written by a usage step.
type Consumption struct {
	ItemIDs []string
	Message string
	Results any
}

// Sale lists the rows created for a services/products sale, in request order.
type Sale struct {
	CreatedItemIDs []string
	Payload        any
}

func (Purchase) upstreamResult()    {}
func (Consumption) upstreamResult() {}
func (Sale) upstreamResult()        {}

