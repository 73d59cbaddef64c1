package extract

// InvalidFileError indicates the input file cannot be submitted for
// extraction: it does not exist or its MIME type is not supported.
type InvalidFileError struct {
	Reason string
}

func (e *InvalidFileError) Error() string {
	return e.Reason
}

// ExtractionError indicates the model call failed or its reply could not be
// turned into invoice data. RawResponse carries the model's reply text when
// one was received, for operator inspection.
type ExtractionError struct {
	Msg         string
	RawResponse string
	Err         error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
