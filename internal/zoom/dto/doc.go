// Package dto contains the JSON shapes of the cloud recording API's
// paginated responses. Each page type knows how to convert itself to
// the model types the rest of the application works with; nothing
// outside the API boundary touches these structs.
package dto
