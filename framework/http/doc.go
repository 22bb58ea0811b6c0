// Package http provides the JSON request and response helpers used by the
// diagnostics endpoints.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	var payload struct {
//	    Bucket string `json:"bucket"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	body, err := req.Body()         // raw body, capped at MaxBodyBytes
//	prefix := req.Query("prefix", "")
//	name := req.RouteParam("instance")
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)           // raw JSON with status
//	res.Success(data)             // 200 {"data": ...}
//	res.Created(data)             // 201 {"data": ...}
//	res.NoContent()               // 204
//	res.Error(400, "bad input")   // {"message": "bad input"}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ValidationError(errs)     // 422 {"errors": {"field": ["msg"]}}
//	res.Fail(err)                 // status chosen from the error type
package http
