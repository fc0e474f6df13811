// Package language maps user-facing language tags to Tesseract traineddata
// codes. ISO 639-1 and 639-2 codes, English language names and BCP 47 tags
// such as "pt-BR" all resolve to the code Tesseract expects.
package language
