package index

import (
	"fmt"

	"github.com/jobala/faharasa/util"
)

// BadOperatorError: the scan's low operator is not GT/GTE or its high
// operator is not LT/LTE.
type BadOperatorError struct {
	*util.FaharasaError
}

func NewBadOperatorError() *BadOperatorError {
	return &BadOperatorError{
		&util.FaharasaError{Message: "scan operators must be GT/GTE for low and LT/LTE for high"},
	}
}

// BadScanRangeError: the scan's low value is greater than its high value.
type BadScanRangeError struct {
	*util.FaharasaError
}

func NewBadScanRangeError() *BadScanRangeError {
	return &BadScanRangeError{
		&util.FaharasaError{Message: "scan low value is greater than high value"},
	}
}

// NoSuchKeyFoundError: no key in the tree satisfies the scan predicate.
type NoSuchKeyFoundError struct {
	*util.FaharasaError
}

func NewNoSuchKeyFoundError() *NoSuchKeyFoundError {
	return &NoSuchKeyFoundError{
		&util.FaharasaError{Message: "no key satisfies the scan predicate"},
	}
}

// ScanNotInitializedError: ScanNext or EndScan without an active scan.
type ScanNotInitializedError struct {
	*util.FaharasaError
}

func NewScanNotInitializedError() *ScanNotInitializedError {
	return &ScanNotInitializedError{
		&util.FaharasaError{Message: "no scan in progress"},
	}
}

// IndexScanCompletedError: the active scan has no more matching entries.
type IndexScanCompletedError struct {
	*util.FaharasaError
}

func NewIndexScanCompletedError() *IndexScanCompletedError {
	return &IndexScanCompletedError{
		&util.FaharasaError{Message: "index scan completed"},
	}
}

// IndexMetadataMismatchError: an existing index file's metadata page
// disagrees with the constructor parameters.
type IndexMetadataMismatchError struct {
	*util.FaharasaError
}

func NewIndexMetadataMismatchError(indexName string) *IndexMetadataMismatchError {
	return &IndexMetadataMismatchError{
		&util.FaharasaError{
			Message: fmt.Sprintf("index file %s exists but its metadata does not match", indexName),
		},
	}
}
