package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument   = 1000
	ErrCodeInvalidJSON       = 1001
	ErrCodeRequestTooLarge   = 1002
	ErrCodeInvalidQuery      = 1003
	ErrCodeInvalidID         = 1004
	ErrCodeInvalidStatus     = 1005
	ErrCodeInvalidUID        = 1006
	ErrCodeInvalidDate       = 1007
	ErrCodeInvalidLabel      = 1008
	ErrCodeMissingRequired   = 1009
	ErrCodeInvalidFileSize   = 1010
	ErrCodeInvalidImportMode = 1011

	// Domain state (2xxx)
	ErrCodeRecordNotFound = 2001
	ErrCodeBlobNotFound   = 2002
	ErrCodeRecordIDExists = 2101
	ErrCodeConflict       = 2102

	// Limits (3xxx)
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
	ErrCodeVaultFailure = 4003
	ErrCodeExportFailed = 4004
	ErrCodeImportFailed = 4005
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodeRecordNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
