package assistant

import "riabuilder/internal/gemini"

// fallbackReply covers turns where the model returned no usable content.
// The message depends on why generation stopped.
func fallbackReply(reason gemini.FinishReason) string {
	switch reason {
	case gemini.FinishSafety:
		return "I couldn't respond to that because the reply was blocked by safety filters. Try rephrasing the request."
	case gemini.FinishRecitation:
		return "I couldn't respond because the reply would have recited copyrighted material. Try asking for a summary instead."
	case gemini.FinishMaxTokens:
		return "The reply ran out of room before it finished. Try asking for a shorter or more focused answer."
	case gemini.FinishMalformedFunctionCall:
		return "I tried to use a tool but produced a malformed call. Please try again, or ask me to do it step by step."
	default:
		return "I didn't get a usable reply from the model. Please try again."
	}
}
