package records

type recordRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type batchRequest struct {
	Records []recordRequest `json:"records"`
}

type recordResponse struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type listResponse struct {
	Records []recordResponse `json:"records"`
	Count   int              `json:"count"`
}

type rejectionResponse struct {
	Index   int            `json:"index"`
	Record  recordResponse `json:"record"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
}

type batchResponse struct {
	Admitted int                 `json:"admitted"`
	Rejected []rejectionResponse `json:"rejected"`
}

type exportRequest struct {
	Label string `json:"label"`
}

func (r recordRequest) toRecord() Record {
	return NewRecord(r.Name, r.Age)
}

func toResponse(rec Record) recordResponse {
	return recordResponse{Name: rec.Name, Age: rec.Age}
}

func toListResponse(recs []Record) listResponse {
	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec))
	}
	return listResponse{Records: out, Count: len(out)}
}

func toBatchResponse(res BatchResult) batchResponse {
	rejected := make([]rejectionResponse, 0, len(res.Rejected))
	for _, rej := range res.Rejected {
		rejected = append(rejected, rejectionResponse{
			Index:   rej.Index,
			Record:  toResponse(rej.Record),
			Code:    ErrorCode(rej.Err),
			Message: rej.Err.Error(),
		})
	}
	return batchResponse{Admitted: res.Admitted, Rejected: rejected}
}
