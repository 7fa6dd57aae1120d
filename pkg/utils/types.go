package utils

// Hand-back message lines. The marker matches the one the annotation parser recognizes.
const (
	HAND_BACK_MARKER        = "[HAND_BACK]:"
	HAND_BACK_DATA_HEADER   = HAND_BACK_MARKER + " Your teammate has completed your task. Here's the new order state:"
	HAND_BACK_RESULT_HEADER = HAND_BACK_MARKER + " Your teammate has completed your task. Here's the result:"
	HAND_BACK_COMMENT       = "Here is the additional comment from your teammate:"
	HAND_OVER_HEADER        = "Here is the summary of the order and your next task:"
)
