package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRequestDataRoundTrip(t *testing.T) {
	if GetRequestData(context.Background()) != nil {
		t.Fatalf("expected nil request data on bare context")
	}
	uid := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{UserID: uid, Role: "employee"})
	rd := GetRequestData(ctx)
	if rd == nil || rd.UserID != uid || rd.Role != "employee" {
		t.Fatalf("unexpected request data: %+v", rd)
	}
}

func TestTraceDataRoundTrip(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	td := GetTraceData(ctx)
	if td == nil || td.TraceID != "t1" || td.RequestID != "r1" {
		t.Fatalf("unexpected trace data: %+v", td)
	}
}
