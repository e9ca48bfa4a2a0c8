package models

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound         = status.Error(codes.NotFound, "not found")
	ErrPermissionDenied = status.Error(codes.PermissionDenied, "permission denied")
	ErrInvalidArgument  = status.Error(codes.InvalidArgument, "invalid argument")
)
