package gemini

// VisionSystemInstruction frames image calls. The instruction sent with the
// image carries the actual question.
const VisionSystemInstruction = `You read product packaging photos for a nutrition assistant.
Answer exactly what the instruction asks, with no preamble and no formatting.
If the requested text is not legible in the image, answer UNKNOWN.`
